package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/config"
	"github.com/kbukum/riv/engine"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/sink"
)

// Run commands accepted by POST /api/v1/runs.
const (
	CommandParse   = "parse"
	CommandAnalyze = "analyze"
	CommandPublish = "publish"
)

// RunRequest is the body of POST /api/v1/runs. Sink uses the same keys as
// the sink section of the config file.
type RunRequest struct {
	Command string         `json:"command" binding:"required,oneof=parse analyze publish"`
	Path    string         `json:"path" binding:"required"`
	Sink    map[string]any `json:"sink"`
}

// RunView is the record of one finished run.
type RunView struct {
	ID         string               `json:"id"`
	Command    string               `json:"command"`
	Path       string               `json:"path"`
	Sink       string               `json:"sink"`
	Status     string               `json:"status"`
	Completed  bool                 `json:"completed"`
	Abandoned  bool                 `json:"abandoned"`
	Atoms      uint64               `json:"atoms"`
	Error      *errors.ErrorBody    `json:"error,omitempty"`
	Metrics    engine.RunMetrics    `json:"metrics"`
	Counts     map[atom.Type]uint64 `json:"counts,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// command converts the request into a worker command. File paths are
// resolved against base.
func (r RunRequest) command(base string) (engine.Command, error) {
	path, err := resolvePath(base, "path", r.Path)
	if err != nil {
		return nil, err
	}
	var settings sink.Settings
	if len(r.Sink) > 0 {
		var cfg sink.Config
		if err := config.Decode(r.Sink, &cfg); err != nil {
			return nil, errors.InvalidConfig("sink", err.Error())
		}
		if err := resolveSinkPaths(base, &cfg); err != nil {
			return nil, err
		}
		s, err := cfg.Settings()
		if err != nil {
			return nil, err
		}
		settings = s
	}
	switch r.Command {
	case CommandParse:
		return engine.Parse{Path: path, Sink: settings}, nil
	case CommandAnalyze:
		return engine.Analyze{Path: path}, nil
	default:
		return engine.Publish{Path: path, Sink: settings}, nil
	}
}

type runsHandler struct {
	worker *engine.Worker
	log    *logger.Logger

	// exec serializes commands; the worker has one event stream.
	exec sync.Mutex

	mu    sync.RWMutex
	runs  []RunView
	limit int

	baseDir string
}

func newRunsHandler(w *engine.Worker, cfg Config, log *logger.Logger) *runsHandler {
	limit := cfg.History
	if limit <= 0 {
		limit = 50
	}
	return &runsHandler{worker: w, limit: limit, baseDir: cfg.BaseDir, log: log.WithComponent("runs")}
}

func (h *runsHandler) create(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidInput(err.Error()))
		return
	}
	cmd, err := req.command(h.baseDir)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	view, err := h.execute(c, cmd)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	view.Command, view.Path = req.Command, req.Path
	if k, ok := req.Sink["kind"].(string); ok {
		view.Sink = k
	}
	h.record(view)
	h.log.Info("run finished", logger.Fields(
		"run_id", view.ID,
		logger.FieldPath, view.Path,
		logger.FieldStatus, view.Status,
		logger.FieldRecords, view.Metrics.Sink.RecordCount,
	))
	c.Header("Location", "/api/v1/runs/"+view.ID)
	RespondCreated(c, view)
}

// execute sends cmd to the worker and drains its events. Once the command
// is accepted the events are read to the end even if the client goes away,
// so the next command starts on a clean stream.
func (h *runsHandler) execute(c *gin.Context, cmd engine.Command) (RunView, error) {
	h.exec.Lock()
	defer h.exec.Unlock()

	view := RunView{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	select {
	case h.worker.Commands() <- cmd:
	case <-h.worker.Done():
		return view, errors.General("pipeline worker stopped")
	case <-c.Request.Context().Done():
		return view, errors.IO(errors.IOKindInterrupted, "request cancelled")
	}

	for ev := range h.worker.Events() {
		switch e := ev.(type) {
		case engine.AtomEvent:
			view.Atoms++
		case engine.ErrorEvent:
			if e.Final {
				return view, e.Err
			}
			body := errors.Wrap(e.Err).ToResponse().Error
			view.Error = &body
		case engine.DoneEvent:
			view.FinishedAt = time.Now().UTC()
			view.Status = e.Result.Status()
			view.Completed = e.Result.Completed
			view.Abandoned = e.Result.Abandoned
			view.Metrics = e.Result.Metrics
			view.Counts = e.Counts
			return view, nil
		}
	}
	return view, errors.General("pipeline worker stopped")
}

func (h *runsHandler) record(v RunView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, v)
	if len(h.runs) > h.limit {
		h.runs = h.runs[len(h.runs)-h.limit:]
	}
}

// list returns the kept runs, newest first.
func (h *runsHandler) list(c *gin.Context) {
	h.mu.RLock()
	out := make([]RunView, 0, len(h.runs))
	for i := len(h.runs) - 1; i >= 0; i-- {
		out = append(out, h.runs[i])
	}
	h.mu.RUnlock()
	RespondOKWithMeta(c, out, &Meta{Total: len(out)})
}

// get returns one run by id; "latest" names the newest.
func (h *runsHandler) get(c *gin.Context) {
	id := c.Param("id")
	h.mu.RLock()
	defer h.mu.RUnlock()
	if id == "latest" && len(h.runs) > 0 {
		RespondOK(c, h.runs[len(h.runs)-1])
		return
	}
	for _, v := range h.runs {
		if v.ID == id {
			RespondOK(c, v)
			return
		}
	}
	RespondWithError(c, errors.NotFound("run", id))
}
