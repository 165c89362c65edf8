package web

import (
	"errors"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/internal/documents"
	"github.com/khanghh/docportal/internal/middlewares"
	"github.com/khanghh/docportal/internal/render"
	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/params"
	"github.com/spf13/cast"
)

type ActivityEventData struct {
	ID             uint64           `json:"id"`
	ActionType     model.ActionType `json:"actionType"`
	ActorUserID    *uint            `json:"actorUserId"`
	ActorLabel     string           `json:"actorLabel"`
	TargetResource *string          `json:"targetResource"`
	Status         string           `json:"status"`
	IP             string           `json:"ip"`
	UserAgent      string           `json:"userAgent"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

type DocumentHandler struct {
	docService DocumentService
}

func documentName(ctx *fiber.Ctx) string {
	name, err := url.PathUnescape(ctx.Params("*"))
	if err != nil {
		return ""
	}
	return name
}

func (h *DocumentHandler) GetHome(ctx *fiber.Ctx) error {
	ident, _ := middlewares.GetIdentity(ctx)
	return render.RenderHomePage(ctx, render.HomePageData{
		Email:      ident.Email,
		IsAdmin:    ident.IsAdmin(),
		Categories: params.DocumentCategories,
	})
}

// GetLibrary lists the documents of one category.
func (h *DocumentHandler) GetLibrary(category string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ident, _ := middlewares.GetIdentity(ctx)
		docs, err := h.docService.ListDocuments(ctx.UserContext(), category)
		if err != nil {
			return err
		}
		items := make([]render.DocumentItem, 0, len(docs))
		for _, doc := range docs {
			items = append(items, render.DocumentItem{
				Name:    doc.Name,
				Path:    doc.Path,
				Size:    doc.Size,
				ModTime: doc.ModTime,
			})
		}
		return render.RenderLibraryPage(ctx, render.LibraryPageData{
			Category:  category,
			Email:     ident.Email,
			IsAdmin:   ident.IsAdmin(),
			Documents: items,
		})
	}
}

func (h *DocumentHandler) serveDocument(ctx *fiber.Ctx, action model.ActionType) error {
	ident, _ := middlewares.GetIdentity(ctx)
	doc, err := h.docService.Open(ctx.UserContext(), action, ident, documentName(ctx))
	if err != nil {
		if errors.Is(err, documents.ErrDocumentNotFound) || errors.Is(err, documents.ErrInvalidName) {
			return render.RenderNotFoundError(ctx)
		}
		slog.Error("Could not serve document", "action", action, "error", err)
		return render.RenderInternalServerError(ctx)
	}

	if action == model.ActionDownload {
		ctx.Attachment(doc.Name)
	} else {
		ctx.Type(filepath.Ext(doc.Name))
		ctx.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": doc.Name}))
	}
	return ctx.SendStream(doc.Content, int(doc.Size))
}

func (h *DocumentHandler) GetViewPolicy(ctx *fiber.Ctx) error {
	return h.serveDocument(ctx, model.ActionView)
}

func (h *DocumentHandler) GetDownloadPolicy(ctx *fiber.Ctx) error {
	return h.serveDocument(ctx, model.ActionDownload)
}

// PostTrackClick records a client side interaction. The document may be given
// as targetResource, policyId or filename.
func (h *DocumentHandler) PostTrackClick(ctx *fiber.Ctx) error {
	body := make(map[string]interface{})
	if err := ctx.BodyParser(&body); err != nil {
		return sendError(ctx, fiber.StatusBadRequest, MsgInvalidRequest)
	}

	var target string
	for _, key := range []string{"targetResource", "policyId", "filename"} {
		if target = strings.TrimSpace(cast.ToString(body[key])); target != "" {
			break
		}
	}

	action := model.ActionClick
	if v := strings.ToUpper(strings.TrimSpace(cast.ToString(body["actionType"]))); v != "" {
		action = model.ActionType(v)
	}
	if action != model.ActionView && action != model.ActionClick {
		return sendError(ctx, fiber.StatusBadRequest, MsgInvalidAction)
	}

	ident, _ := middlewares.GetIdentity(ctx)
	err := h.docService.Track(ctx.UserContext(), action, ident, target)
	switch {
	case err == nil:
		return sendData(ctx, fiber.StatusOK, MessageData{Message: MsgActivityRecorded})
	case errors.Is(err, documents.ErrMissingTarget):
		return sendError(ctx, fiber.StatusBadRequest, MsgMissingTarget)
	case errors.Is(err, documents.ErrAnonymous):
		return sendError(ctx, fiber.StatusUnauthorized, MsgLoginRequired)
	default:
		slog.Error("Could not track document activity", "error", err)
		return sendError(ctx, fiber.StatusInternalServerError, MsgServerError)
	}
}

func (h *DocumentHandler) DeletePolicy(ctx *fiber.Ctx) error {
	ident, _ := middlewares.GetIdentity(ctx)
	err := h.docService.DeletePolicy(ctx.UserContext(), ident, documentName(ctx))
	switch {
	case err == nil:
		return sendData(ctx, fiber.StatusOK, MessageData{Message: MsgDocumentDeleted})
	case errors.Is(err, documents.ErrForbidden):
		return sendError(ctx, fiber.StatusForbidden, MsgAdminOnly)
	case errors.Is(err, documents.ErrDocumentNotFound), errors.Is(err, documents.ErrInvalidName):
		return sendError(ctx, fiber.StatusNotFound, MsgDocumentNotFound)
	default:
		slog.Error("Could not delete document", "error", err)
		return sendError(ctx, fiber.StatusInternalServerError, MsgServerError)
	}
}

// GetActivity returns recent activity events for administrators.
func (h *DocumentHandler) GetActivity(ctx *fiber.Ctx) error {
	ident, _ := middlewares.GetIdentity(ctx)
	if !ident.IsAdmin() {
		return sendError(ctx, fiber.StatusForbidden, MsgAdminOnly)
	}

	filter := audit.Filter{
		ActorLabel:     strings.ToLower(ctx.Query("actor")),
		ActionType:     model.ActionType(strings.ToUpper(ctx.Query("action"))),
		TargetResource: ctx.Query("target"),
		Limit:          cast.ToInt(ctx.Query("limit")),
	}
	if uid := cast.ToUint(ctx.Query("userId")); uid != 0 {
		filter.ActorUserID = &uid
	}

	events, err := h.docService.RecentActivity(ctx.UserContext(), filter)
	if err != nil {
		slog.Error("Could not query activity", "error", err)
		return sendError(ctx, fiber.StatusInternalServerError, MsgServerError)
	}
	data := make([]ActivityEventData, 0, len(events))
	for _, ev := range events {
		data = append(data, ActivityEventData{
			ID:             ev.ID,
			ActionType:     ev.ActionType,
			ActorUserID:    ev.ActorUserID,
			ActorLabel:     ev.ActorLabel,
			TargetResource: ev.TargetResource,
			Status:         ev.Status,
			IP:             ev.IP,
			UserAgent:      ev.UserAgent,
			OccurredAt:     ev.OccurredAt,
		})
	}
	return sendData(ctx, fiber.StatusOK, data)
}

func NewDocumentHandler(docService DocumentService) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
	}
}
