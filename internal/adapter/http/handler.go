package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"resume-builder/internal/auth"
	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Resumes is the owned document store. *service.ResumeService satisfies it.
type Resumes interface {
	List(ctx context.Context) ([]model.Document, error)
	Get(ctx context.Context, id string) (model.Document, error)
	Create(ctx context.Context, who auth.Identity, doc model.Document) (model.Document, error)
	Update(ctx context.Context, who auth.Identity, id string, doc model.Document) (model.Document, error)
	Delete(ctx context.Context, who auth.Identity, id string) error
}

// LocalStore is the unauthenticated fallback store.
type LocalStore interface {
	List(ctx context.Context) ([]model.Document, error)
	Get(ctx context.Context, id string) (model.Document, error)
	Create(ctx context.Context, doc model.Document) (model.Document, error)
	Update(ctx context.Context, id string, doc model.Document) (model.Document, error)
	Delete(ctx context.Context, id string) error
}

// ExportHistory lists past export runs of a resume.
type ExportHistory interface {
	ListByResume(ctx context.Context, resumeID string) ([]domain.ExportJob, error)
}

// Deps are the collaborators a Handler needs. Local, Improver, History and
// ObjectSaver are optional.
type Deps struct {
	Resumes     Resumes
	Local       LocalStore
	Engine      *usecase.Engine
	Improver    usecase.Improver
	Exporter    *export.Pipeline
	ObjectSaver export.Saver
	History     ExportHistory
	Logger      *slog.Logger
}

type Handler struct {
	resumes  Resumes
	local    LocalStore
	engine   *usecase.Engine
	improver usecase.Improver
	exporter *export.Pipeline
	objects  export.Saver
	history  ExportHistory
	log      *slog.Logger
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := d.Engine
	if engine == nil {
		engine = usecase.NewEngine(d.Improver, logger)
	}
	return &Handler{
		resumes:  d.Resumes,
		local:    d.Local,
		engine:   engine,
		improver: d.Improver,
		exporter: d.Exporter,
		objects:  d.ObjectSaver,
		history:  d.History,
		log:      logger,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// parseDocument accepts the current document shape and every legacy shape.
func parseDocument(c *fiber.Ctx) (model.Document, error) {
	body := c.Body()
	if len(body) == 0 {
		return model.Document{}, fmt.Errorf("%w: empty body", model.ErrInvalidDocument)
	}
	doc, err := model.DecodeAny(body)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", model.ErrInvalidDocument, err)
	}
	return doc, nil
}

func (h *Handler) ListResumes(c *fiber.Ctx) error {
	docs, err := h.resumes.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(docs)
}

func (h *Handler) GetResume(c *fiber.Ctx) error {
	doc, err := h.resumes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(doc)
}

func (h *Handler) CreateResume(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	created, err := h.resumes.Create(c.UserContext(), identity(c), doc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) UpdateResume(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	updated, err := h.resumes.Update(c.UserContext(), identity(c), c.Params("id"), doc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteResume(c *fiber.Ctx) error {
	if err := h.resumes.Delete(c.UserContext(), identity(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type editReq struct {
	Op    string            `json:"op"`
	Path  string            `json:"path"`
	Kind  model.SectionKind `json:"kind"`
	Index int               `json:"index"`
	To    int               `json:"to"`
	Field string            `json:"field"`
	Value string            `json:"value"`
	Item  json.RawMessage   `json:"item"`
}

var errUnknownOp = errors.New("unknown edit op")

// apply runs one edit. move_item moves the item at index to position to.
func (h *Handler) apply(doc model.Document, req editReq) (model.Document, error) {
	switch req.Op {
	case "set":
		return h.engine.SetScalarField(doc, req.Path, req.Value)
	case "add":
		item, err := model.DecodeItem(req.Kind, req.Item)
		if err != nil {
			return doc, fmt.Errorf("%w: %v", model.ErrInvalidDocument, err)
		}
		return h.engine.AddSectionItem(doc, req.Kind, item)
	case "ensure":
		return h.engine.EnsureSection(doc, req.Kind)
	case "update":
		return h.engine.UpdateSectionItem(doc, req.Kind, req.Index, req.Field, req.Value)
	case "remove":
		return h.engine.RemoveSectionItem(doc, req.Kind, req.Index)
	case "move_item":
		return h.engine.MoveSectionItem(doc, req.Kind, req.Index, req.To)
	case "move_section":
		return h.engine.MoveSection(doc, req.Kind, req.To)
	}
	return doc, fmt.Errorf("%w: %w %q", model.ErrInvalidDocument, errUnknownOp, req.Op)
}

// EditResume applies one mutation to a stored resume and persists the result.
func (h *Handler) EditResume(c *fiber.Ctx) error {
	var req editReq
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid payload")
	}
	ctx := c.UserContext()
	id := c.Params("id")
	doc, err := h.resumes.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	next, err := h.apply(doc, req)
	if err != nil {
		return h.fail(c, err)
	}
	saved, err := h.resumes.Update(ctx, identity(c), id, next)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(saved)
}

type improveReq struct {
	Path string `json:"path"`
	Hint string `json:"hint"`
}

type improveResp struct {
	Document     model.Document `json:"document"`
	ImprovedText string         `json:"improvedText"`
	Applied      bool           `json:"applied"`
	Notice       string         `json:"notice,omitempty"`
}

// ImproveResume rewrites the text at path. An applied improvement is
// persisted; an unavailable improver leaves the resume as it was.
func (h *Handler) ImproveResume(c *fiber.Ctx) error {
	var req improveReq
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid payload")
	}
	ctx := c.UserContext()
	id := c.Params("id")
	doc, err := h.resumes.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}

	var hint ai.Hint
	if req.Hint != "" {
		hint = ai.ParseHint(req.Hint)
	}
	res, err := h.engine.RequestTextImprovement(ctx, doc, req.Path, hint)
	if err != nil {
		return h.fail(c, err)
	}
	out := improveResp{Document: res.Document, ImprovedText: res.Text, Applied: res.Applied}
	if res.Notice != nil {
		out.Notice = "AI improvement is unavailable right now. Your text was kept."
	}
	if res.Applied {
		saved, err := h.resumes.Update(ctx, identity(c), id, res.Document)
		if err != nil {
			return h.fail(c, err)
		}
		out.Document = saved
	}
	return c.JSON(out)
}

func (h *Handler) LayoutResume(c *fiber.Ctx) error {
	doc, err := h.resumes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(layout.Project(doc))
}

func (h *Handler) PreviewResume(c *fiber.Ctx) error {
	doc, err := h.resumes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	page, err := layout.HTML(layout.Project(doc))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

func (h *Handler) ExportResume(c *fiber.Ctx) error {
	doc, err := h.resumes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.export(c, doc)
}

// ExportDocument exports a posted document without storing it.
func (h *Handler) ExportDocument(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.export(c, doc)
}

// export sends the PDF as an attachment, or with ?delivery=link uploads it to
// object storage and returns where to fetch it.
func (h *Handler) export(c *fiber.Ctx, doc model.Document) error {
	if h.exporter == nil {
		return h.fail(c, export.ErrCaptureUnavailable)
	}
	p := h.exporter
	link := c.Query("delivery") == "link"
	if link {
		if h.objects == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "link delivery is not configured")
		}
		p = p.WithSaver(h.objects)
	}

	res, err := p.Run(c.UserContext(), doc)
	if err != nil {
		if res == nil || res.Message == "" {
			return h.fail(c, err)
		}
		status, code, _ := statusOf(err)
		h.log.Error("export failed", "request_id", requestIDFromCtx(c), "job_id", res.JobID, "error", err)
		return writeError(c, status, code, res.Message)
	}
	if link {
		return c.JSON(res)
	}
	c.Set(fiber.HeaderContentType, res.Artifact.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.FileName))
	c.Set("X-Export-Job-ID", res.JobID.String())
	return c.Send(res.Artifact.Data)
}

func (h *Handler) ListExports(c *fiber.Ctx) error {
	if h.history == nil {
		return c.JSON([]domain.ExportJob{})
	}
	jobs, err := h.history.ListByResume(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(jobs)
}

type improveTextReq struct {
	Text        string `json:"text"`
	SectionHint string `json:"sectionHint"`
	Section     string `json:"section"`
}

// ImproveText is the stateless improvement contract. The reply carries the
// rewrite under both "improvedText" and "improved". When no rewrite can be
// obtained the original text comes back with a notice.
func (h *Handler) ImproveText(c *fiber.Ctx) error {
	var req improveTextReq
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return writeError(c, fiber.StatusBadRequest, "EMPTY_INPUT", "No text provided")
	}
	hint := req.SectionHint
	if hint == "" {
		hint = req.Section
	}

	var (
		improved string
		err      error
	)
	if h.improver == nil {
		err = errors.New("no improver configured")
	} else {
		improved, err = h.improver.Improve(c.UserContext(), req.Text, ai.ParseHint(hint))
		if err == nil && strings.TrimSpace(improved) == "" {
			err = errors.New("empty improvement")
		}
	}
	if err != nil {
		h.log.Warn("improve-text unavailable, returning original", "request_id", requestIDFromCtx(c), "error", err)
		metrics.ImprovementsTotal.WithLabelValues("unavailable").Inc()
		return c.JSON(fiber.Map{
			"improvedText": req.Text,
			"improved":     req.Text,
			"notice":       "text improvement is unavailable, the original text was kept",
		})
	}
	improved = strings.TrimSpace(improved)
	metrics.ImprovementsTotal.WithLabelValues("applied").Inc()
	return c.JSON(fiber.Map{"improvedText": improved, "improved": improved})
}

func (h *Handler) ListLocal(c *fiber.Ctx) error {
	docs, err := h.local.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(docs)
}

func (h *Handler) GetLocal(c *fiber.Ctx) error {
	doc, err := h.local.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(doc)
}

func (h *Handler) CreateLocal(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	created, err := h.local.Create(c.UserContext(), doc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) UpdateLocal(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	updated, err := h.local.Update(c.UserContext(), c.Params("id"), doc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteLocal(c *fiber.Ctx) error {
	if err := h.local.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
