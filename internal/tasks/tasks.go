package tasks

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
)

// Syncer reconciles one claim set. It is implemented by [services.UserService].
type Syncer interface {
	Sync(ctx context.Context, c claims.Claims) (services.Outcome, error)
}

// ImportEngine runs bulk reconciliation against a [Syncer].
type ImportEngine struct {
	users  Syncer
	logger *log.Logger
}

// NewImportEngine creates a new ImportEngine with the provided user service.
func NewImportEngine(users Syncer, logger *log.Logger) *ImportEngine {
	return &ImportEngine{users: users, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ReadClaimSets decodes claim sets from r. The input is either a single JSON array of
// objects or a stream of objects (JSON lines). Empty input yields no sets.
func ReadClaimSets(r io.Reader) ([]claims.Claims, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []claims.Claims{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read claims: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var sets []claims.Claims
		if err := dec.Decode(&sets); err != nil {
			return nil, fmt.Errorf("%w: claims array: %v", shared.ErrInvalidInput, err)
		}
		return sets, nil
	}

	sets := []claims.Claims{}
	for {
		var c claims.Claims
		if err := dec.Decode(&c); errors.Is(err, io.EOF) {
			return sets, nil
		} else if err != nil {
			return nil, fmt.Errorf("%w: claim set %d: %v", shared.ErrInvalidInput, len(sets)+1, err)
		}
		sets = append(sets, c)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
