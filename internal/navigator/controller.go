package navigator

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webnav/navigator/internal/metrics"
)

// openStepSleepSeconds paces the appended navigation step so the
// target page settles before the run finishes.
const openStepSleepSeconds = 1.5

// ControllerConfig carries the side-channel knobs for completed jobs.
type ControllerConfig struct {
	Topic         string
	ArchivePrefix string
	ContentType   string
}

// Controller composes search, decision, automation and verification
// into one end-to-end run. The job-level contract is best-effort: a
// structured JobResult is always returned, degraded where stages
// failed.
type Controller struct {
	orchestrator *Orchestrator
	engine       *DecisionEngine
	memory       Memory
	runner       StepRunner
	verifier     Verifier
	history      JobStore
	archive      BlobStore
	publisher    Publisher
	clock        Clock
	cfg          ControllerConfig
	logger       *zap.Logger
}

// NewController wires a Controller. History, archive and publisher
// are optional; a nil collaborator skips that side channel.
func NewController(
	orchestrator *Orchestrator,
	engine *DecisionEngine,
	memory Memory,
	runner StepRunner,
	verifier Verifier,
	history JobStore,
	archive BlobStore,
	publisher Publisher,
	clock Clock,
	cfg ControllerConfig,
	logger *zap.Logger,
) *Controller {
	if cfg.ContentType == "" {
		cfg.ContentType = "application/json"
	}
	if cfg.ArchivePrefix == "" {
		cfg.ArchivePrefix = "jobs"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		orchestrator: orchestrator,
		engine:       engine,
		memory:       memory,
		runner:       runner,
		verifier:     verifier,
		history:      history,
		archive:      archive,
		publisher:    publisher,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// RunJob executes the full pipeline for one query. Steps are the
// caller-supplied opening sequence; when a URL is selected, a direct
// navigation step is appended so the run does not depend on the SERP
// DOM.
func (c *Controller) RunJob(ctx context.Context, query string, steps []Step) JobResult {
	start := c.clock.Now()

	results, providerUsed := c.orchestrator.RunSearch(ctx, query)

	finalSteps := make([]Step, len(steps))
	copy(finalSteps, steps)

	selected, ok := c.engine.SelectURL(results, query)
	if ok {
		finalSteps = append(finalSteps, Step{
			Action:       ActionOpen,
			URL:          selected,
			SleepSeconds: openStepSleepSeconds,
		})
		if err := c.memory.RememberQuery(query, selected); err != nil {
			c.logger.Warn("remember query failed", zap.Error(err))
		}
		if err := c.memory.ReinforceDomain(selected); err != nil {
			c.logger.Warn("reinforce domain failed",
				zap.String("url", selected),
				zap.Error(err),
			)
		}
	}

	trace, err := c.runner.RunSteps(ctx, finalSteps)
	if err != nil {
		// Automation phase aborted; search and verification still
		// complete and the partial trace is kept.
		c.logger.Warn("automation aborted", zap.Error(err))
	}
	if trace == nil {
		trace = []TraceEntry{}
	}

	verification := c.verifier.Verify(ctx, results)

	result := JobResult{
		JobID:        uuid.NewString(),
		Query:        query,
		ProviderUsed: providerUsed,
		Results:      results,
		Trace:        trace,
		Verification: verification,
		Timestamp:    c.clock.Now(),
	}

	c.recordJob(ctx, result)
	metrics.ObserveJob(jobStatus(result), c.clock.Now().Sub(start))
	return result
}

// recordJob fans the finished result out to history, archive and the
// event topic. Each side channel is best-effort.
func (c *Controller) recordJob(ctx context.Context, result JobResult) {
	if c.history != nil {
		if err := c.history.RecordJob(ctx, result); err != nil {
			c.logger.Warn("record job failed", zap.String("job_id", result.JobID), zap.Error(err))
		}
	}
	if c.archive != nil {
		payload, err := json.Marshal(result)
		if err != nil {
			c.logger.Warn("marshal job result failed", zap.Error(err))
		} else {
			uri, err := c.archive.PutObject(ctx,
				path.Join(c.cfg.ArchivePrefix, fmt.Sprintf("%s.json", result.JobID)),
				c.cfg.ContentType,
				payload,
			)
			if err != nil {
				c.logger.Warn("archive job result failed", zap.Error(err))
			} else {
				c.logger.Debug("job result archived", zap.String("uri", uri))
			}
		}
	}
	if c.publisher != nil {
		if _, err := c.publisher.Publish(ctx, c.cfg.Topic, jobEvent(result)); err != nil {
			c.logger.Warn("publish job event failed", zap.Error(err))
		}
	}
}

func jobStatus(result JobResult) string {
	if len(result.Results) == 0 {
		return "empty"
	}
	for _, entry := range result.Trace {
		if entry.Result == StepFailure {
			return "degraded"
		}
	}
	return "ok"
}

// jobEvent is the compact completion payload sent to the event topic.
func jobEvent(result JobResult) map[string]any {
	return map[string]any{
		"job_id":        result.JobID,
		"query":         result.Query,
		"provider_used": result.ProviderUsed,
		"result_count":  len(result.Results),
		"trace_len":     len(result.Trace),
		"confidence":    result.Verification.Confidence,
		"timestamp":     result.Timestamp,
	}
}
