package sensor

import (
	"context"

	"codeberg.org/seliv/tempwatch/internal/errors"
	"codeberg.org/seliv/tempwatch/internal/logger"
)

// Multi concatenates the snapshots of several sources into one. A source
// that fails is skipped for the cycle; the sample only fails as a whole
// when every source failed, and then reports the first failure.
type Multi struct {
	sources []Source
}

func NewMulti(sources ...Source) *Multi {
	return &Multi{sources: sources}
}

func (*Multi) Name() string {
	return "multi"
}

func (m *Multi) Sample(ctx context.Context) ([]Hardware, error) {
	errFactory := errors.New()

	var (
		snapshot []Hardware
		firstErr error
		sampled  bool
	)

	for _, src := range m.sources {
		hw, err := src.Sample(ctx)
		if err != nil {
			logger.Debug().
				Str("source", src.Name()).
				Str("kind", string(Code(err))).
				Err(err).
				Msg("source skipped")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		sampled = true
		snapshot = append(snapshot, hw...)
	}

	if !sampled {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, errFactory.WithMessage(ErrUnavailable, "no sources configured")
	}

	return snapshot, nil
}
