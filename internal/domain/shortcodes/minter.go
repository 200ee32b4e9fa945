package shortcodes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/brewvote/server/internal/domain/fault"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	CodeLength   = 8
	MaxMintBatch = 500

	maxMintRetries = 3
	alphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// largest multiple of len(alphabet) that fits in a byte; bytes at or
	// above it are rejected to keep the distribution uniform
	rejectAbove = 248
)

var ErrInvalidCount = fault.Validation("invalid_count", fmt.Sprintf("Count must be between 1 and %d", MaxMintBatch))

// Minter issues batches of voter codes for an event. Voter rows are not
// created here; registration happens on first visit.
type Minter struct {
	repo    Repository
	logger  zerolog.Logger
	entropy io.Reader
}

func NewMinter(repo Repository, logger zerolog.Logger) *Minter {
	return &Minter{
		repo:    repo,
		logger:  logger.With().Str("component", "shortcodes").Logger(),
		entropy: rand.Reader,
	}
}

func (m *Minter) Mint(ctx context.Context, eventID uuid.UUID, count int) ([]ShortCode, error) {
	if count < 1 || count > MaxMintBatch {
		return nil, ErrInvalidCount
	}

	for attempt := 0; attempt <= maxMintRetries; attempt++ {
		batch, err := m.generate(eventID, count)
		if err != nil {
			return nil, fault.Internal("voter_codes_mint_failed", err)
		}

		err = m.repo.InsertBatch(ctx, batch)
		if err == nil {
			return batch, nil
		}
		if !errors.Is(err, ErrCollision) {
			return nil, fault.Internal("voter_codes_mint_failed", fmt.Errorf("insert voter codes: %w", err))
		}
		m.logger.Info().Int("attempt", attempt+1).Int("count", count).Msg("voter code collision, regenerating batch")
	}

	return nil, fault.Internal("voter_codes_mint_failed", fmt.Errorf("voter codes collided after %d retries", maxMintRetries))
}

func (m *Minter) generate(eventID uuid.UUID, count int) ([]ShortCode, error) {
	seen := make(map[string]struct{}, count)
	batch := make([]ShortCode, 0, count)
	for len(batch) < count {
		code, err := randomCode(m.entropy, CodeLength)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		batch = append(batch, ShortCode{
			Code:     code,
			Kind:     KindVoter,
			TargetID: uuid.New(),
			EventID:  eventID,
		})
	}
	return batch, nil
}

func randomCode(entropy io.Reader, length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := io.ReadFull(entropy, buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if b >= rejectAbove {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
