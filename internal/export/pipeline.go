package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/pkg/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrCaptureUnavailable = errors.New("capture unavailable")
	ErrEncodeFailed       = errors.New("encode failed")
	ErrSaveUnavailable    = errors.New("save unavailable")
)

const (
	msgCapture = "The resume preview could not be captured. Please try again."
	msgEncode  = "The captured preview could not be converted into a PDF. Please try again."
	msgSave    = "The PDF could not be saved. Please try again."
)

var tracer = otel.Tracer("resume-builder/internal/export")

// Capturer renders HTML and returns a PNG of the resume surface scaled by
// scale device pixels per CSS pixel.
type Capturer interface {
	Capture(ctx context.Context, html []byte, scale float64) ([]byte, error)
}

// JobRecorder persists export run records. Failures are logged only.
type JobRecorder interface {
	Save(ctx context.Context, j *domain.ExportJob) error
}

type Options struct {
	Scale      float64
	Quality    int
	Page       PageSize
	MaxWidthPx int
}

func DefaultOptions() Options {
	return Options{Scale: 3, Quality: 95, Page: A4}
}

type Pipeline struct {
	capturer Capturer
	saver    Saver
	recorder JobRecorder
	log      *slog.Logger
	opts     Options
	now      func() time.Time
}

func New(c Capturer, s Saver, opts Options, logger *slog.Logger) *Pipeline {
	def := DefaultOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Quality <= 0 {
		opts.Quality = def.Quality
	}
	if opts.Page.WidthMM <= 0 || opts.Page.HeightMM <= 0 {
		opts.Page = def.Page
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{capturer: c, saver: s, log: logger, opts: opts, now: time.Now}
}

// WithRecorder returns a copy of p that records every run.
func (p *Pipeline) WithRecorder(r JobRecorder) *Pipeline {
	cp := *p
	cp.recorder = r
	return &cp
}

// WithSaver returns a copy of p that saves through s.
func (p *Pipeline) WithSaver(s Saver) *Pipeline {
	cp := *p
	cp.saver = s
	return &cp
}

// Result describes a finished run, successful or not.
type Result struct {
	JobID      uuid.UUID  `json:"job_id"`
	State      State      `json:"state"`
	History    []State    `json:"history"`
	FileName   string     `json:"file_name"`
	Pagination Pagination `json:"pagination"`
	Pages      int        `json:"pages"`
	Location   string     `json:"location,omitempty"`
	Message    string     `json:"message,omitempty"`
	Artifact   Artifact   `json:"-"`
}

// Run exports doc: capture the rendered surface, encode it, paginate it into
// a PDF and save it. doc is only read. On failure the result is in the
// failed state with a user facing Message and the returned error wraps
// ErrCaptureUnavailable, ErrEncodeFailed or ErrSaveUnavailable.
func (p *Pipeline) Run(ctx context.Context, doc model.Document) (*Result, error) {
	ctx, span := tracer.Start(ctx, "export.Run")
	defer span.End()

	tr := NewTracker()
	now := p.now()
	job := &domain.ExportJob{
		ID:        uuid.New(),
		OwnerID:   doc.OwnerID,
		State:     string(tr.State()),
		FileName:  doc.FileName(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if id, err := uuid.Parse(doc.ID); err == nil {
		job.ResumeID = &id
	}
	span.SetAttributes(attribute.String("export.job_id", job.ID.String()))
	res := &Result{JobID: job.ID, FileName: job.FileName}

	fail := func(cause error, taxonomy error, msg string) (*Result, error) {
		_ = tr.Transition(StateFailed)
		res.State, res.History, res.Message = tr.State(), tr.History(), msg
		job.Message = msg
		p.finish(ctx, job, tr)
		span.RecordError(cause)
		span.SetStatus(codes.Error, msg)
		p.log.Warn("export: failed", "job_id", job.ID, "file", job.FileName, "error", cause)
		if errors.Is(cause, taxonomy) {
			return res, cause
		}
		return res, fmt.Errorf("%w: %v", taxonomy, cause)
	}

	if err := tr.Transition(StateCapturing); err != nil {
		return nil, err
	}
	p.record(ctx, job, tr)

	var bitmap []byte
	err := p.stage(ctx, StateCapturing, func(ctx context.Context) error {
		if p.capturer == nil {
			return errors.New("no capturer configured")
		}
		html, err := layout.HTML(layout.Project(doc))
		if err != nil {
			return err
		}
		bitmap, err = p.capturer.Capture(ctx, html, p.opts.Scale)
		if err == nil && len(bitmap) == 0 {
			err = errors.New("empty capture")
		}
		return err
	})
	if err != nil {
		return fail(err, ErrCaptureUnavailable, msgCapture)
	}

	if err := tr.Transition(StateEncoding); err != nil {
		return nil, err
	}
	var jpg []byte
	var w, h int
	err = p.stage(ctx, StateEncoding, func(context.Context) error {
		var err error
		jpg, w, h, err = EncodeJPEG(bitmap, p.opts.Quality, p.opts.MaxWidthPx)
		return err
	})
	if err != nil {
		return fail(err, ErrEncodeFailed, msgEncode)
	}

	if err := tr.Transition(StatePaginating); err != nil {
		return nil, err
	}
	var pdf []byte
	err = p.stage(ctx, StatePaginating, func(context.Context) error {
		pg, err := Paginate(w, h, p.opts.Page)
		if err != nil {
			return err
		}
		res.Pagination, res.Pages = pg, len(pg.Frames)
		pdf, err = WritePDF(jpg, pg, p.opts.Page)
		return err
	})
	if err != nil {
		return fail(err, ErrEncodeFailed, msgEncode)
	}
	job.Pages, job.Bytes = res.Pages, len(pdf)
	res.Artifact = Artifact{JobID: job.ID.String(), Name: job.FileName, ContentType: "application/pdf", Data: pdf}

	err = p.stage(ctx, StateSaved, func(ctx context.Context) error {
		if p.saver == nil {
			return errors.New("no saver configured")
		}
		loc, err := p.saver.Save(ctx, res.Artifact)
		res.Location = loc
		return err
	})
	if err != nil {
		return fail(err, ErrSaveUnavailable, msgSave)
	}
	if err := tr.Transition(StateSaved); err != nil {
		return nil, err
	}
	res.State, res.History = tr.State(), tr.History()
	job.Location = res.Location
	p.finish(ctx, job, tr)
	metrics.ExportPages.Observe(float64(res.Pages))
	p.log.Info("export: saved", "job_id", job.ID, "file", job.FileName, "pages", res.Pages, "bytes", len(pdf))
	return res, nil
}

func (p *Pipeline) stage(ctx context.Context, st State, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "export."+string(st))
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	metrics.ExportStageSeconds.WithLabelValues(string(st)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (p *Pipeline) finish(ctx context.Context, job *domain.ExportJob, tr *Tracker) {
	metrics.ExportsTotal.WithLabelValues(string(tr.State())).Inc()
	p.record(context.WithoutCancel(ctx), job, tr)
}

func (p *Pipeline) record(ctx context.Context, job *domain.ExportJob, tr *Tracker) {
	job.State = string(tr.State())
	job.UpdatedAt = p.now()
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Save(ctx, job); err != nil {
		p.log.Warn("export: unable to record job (non-fatal)", "job_id", job.ID, "state", job.State, "error", err)
	}
}
