package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/neilberkman/cpl/internal/core/db"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// DefaultMaxAttempts is how often a queued session is retried
const DefaultMaxAttempts = 3

// ProcessQueue analyzes pending queue items oldest first. A failing item is
// marked and stops the drain, leaving the rest pending for the next pass.
func (r *Runner) ProcessQueue(ctx context.Context, projectsDir string, limit, maxAttempts int) (*Summary, error) {
	if r.state == nil {
		return nil, fmt.Errorf("queue processing needs the state database")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	items, err := r.state.PendingQueue(limit)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Results: make([]SessionResult, 0, len(items))}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		info := QueueSessionInfo(projectsDir, item)
		result, err := r.AnalyzeSession(ctx, info)
		if err != nil {
			if markErr := r.state.MarkFailed(item.ID, err, maxAttempts); markErr != nil {
				log.Warn().Err(markErr).Int64("item", item.ID).Msg("failed to mark queue item")
			}
			return summary, fmt.Errorf("session %s: %w", item.SessionID, err)
		}
		summary.Add(*result)

		if err := r.state.MarkDone(item.ID); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// QueueSessionInfo locates the transcript for a queue item. An explicit
// transcript path wins over the derived projects-dir location.
func QueueSessionInfo(projectsDir string, item db.QueueItem) ccsessions.SessionInfo {
	path := item.TranscriptPath
	if path == "" {
		path = ccsessions.SessionPath(projectsDir, item.SessionID, item.ProjectPath)
	}
	info := ccsessions.SessionInfoFromPath(path)
	info.ID = item.SessionID
	return info
}
