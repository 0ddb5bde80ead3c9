package requests

import (
	"context"
	"strings"
	"time"

	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// Validator classifies raw patient identifier input against the
// format rule and the existing-request snapshot
type Validator struct {
	repo   interfaces.RequestRepository
	logger *logger.Logger
}

// NewValidator creates a new identifier validator
func NewValidator(repo interfaces.RequestRepository, log *logger.Logger) *Validator {
	return &Validator{
		repo:   repo,
		logger: log,
	}
}

// SplitIdentifiers splits a raw comma-separated identifier string,
// trimming whitespace and dropping empty segments
func SplitIdentifiers(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Classify splits the raw input and produces three disjoint sets:
// well-formed-and-novel, malformed, and well-formed-but-already-present.
// The snapshot is refreshed first; when the refresh fails the previous
// snapshot is served instead, since consumers tolerate staleness.
func (v *Validator) Classify(ctx context.Context, raw string) *types.Classification {
	if len(SplitIdentifiers(raw)) == 0 {
		return &types.Classification{CheckedAt: time.Now()}
	}

	if err := v.repo.Refresh(ctx); err != nil {
		v.logger.WithComponent("validator").WithError(err).Warn("Snapshot refresh failed, classifying against stale copy")
	}

	return v.ClassifyOffline(raw)
}

// ClassifyOffline classifies against the current snapshot without
// refreshing it
func (v *Validator) ClassifyOffline(raw string) *types.Classification {
	result := &types.Classification{CheckedAt: time.Now()}

	ids := SplitIdentifiers(raw)
	if len(ids) == 0 {
		return result
	}

	existing := v.repo.RequestedPatientIDs()

	for _, id := range ids {
		switch {
		case !types.PatientIDPattern.MatchString(id):
			result.Malformed = append(result.Malformed, id)
		case existing[id]:
			result.AlreadyRequested = append(result.AlreadyRequested, id)
		default:
			result.Valid = append(result.Valid, id)
		}
	}

	return result
}
