// handlers_designer.go - Designer session operation handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/label-designer/backend/internal/document"
	"github.com/label-designer/backend/internal/imagepayload"
	"github.com/label-designer/backend/internal/session"
)

// Element kind route parameter values
const (
	kindText    = "text"
	kindValue   = "value"
	kindIcon    = "icon"
	kindBarcode = "barcode"
)

// DesignerHandlerImpl implements the DesignerHandler interface
type DesignerHandlerImpl struct {
	manager       *session.Manager
	maxImageBytes int64
}

// NewDesignerHandler creates a new designer handler instance
func NewDesignerHandler(manager *session.Manager, maxImageBytes int64) DesignerHandler {
	return &DesignerHandlerImpl{
		manager:       manager,
		maxImageBytes: maxImageBytes,
	}
}

// HandleOpenSession opens a designer session for a printer
func (h *DesignerHandlerImpl) HandleOpenSession(c echo.Context) error {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.IP == "" {
		return NewValidationError("ip")
	}

	sess, err := h.manager.Open(c.Request().Context(), req.IP)
	if errors.Is(err, session.ErrPrinterNotFound) {
		return NewNotFoundError("printer", req.IP)
	}
	if err != nil {
		return NewServiceUnavailableError("failed to open designer session", err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// HandleGetSession returns designer session metadata
func (h *DesignerHandlerImpl) HandleGetSession(c echo.Context) error {
	sessionID := c.Param("sessionId")
	sess, ok := h.manager.Get(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}

	doc, _ := h.manager.Document(sessionID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session":  sess,
		"document": doc,
	})
}

// HandleSessionKeepAlive extends a session's lifetime
func (h *DesignerHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if !h.manager.Touch(sessionID) {
		return NewNotFoundError("session", sessionID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

// HandleCloseSession ends a designer session
func (h *DesignerHandlerImpl) HandleCloseSession(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if !h.manager.Close(sessionID) {
		return NewNotFoundError("session", sessionID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"closed": true,
	})
}

// HandleAddElement appends a new element of the requested kind with kind
// defaults and returns it with its assigned id
func (h *DesignerHandlerImpl) HandleAddElement(c echo.Context) error {
	sessionID := c.Param("sessionId")
	doc, ok := h.manager.Doc(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}

	var el interface{}
	switch c.Param("kind") {
	case kindText:
		el = doc.AddText()
	case kindValue:
		el = doc.AddValue()
	case kindIcon:
		el = doc.AddIcon()
	case kindBarcode:
		el = doc.AddBarcode()
	default:
		return NewValidationError("kind")
	}
	return c.JSON(http.StatusCreated, el)
}

// HandleUpdateElement applies a partial update to one element. Absent fields
// are left unchanged. A missing element id reports updated=false rather than
// an error, since the element may have been deleted by an earlier action.
func (h *DesignerHandlerImpl) HandleUpdateElement(c echo.Context) error {
	sessionID := c.Param("sessionId")
	doc, ok := h.manager.Doc(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError("id")
	}

	var updated bool
	switch c.Param("kind") {
	case kindText:
		var u document.TextUpdate
		if err := c.Bind(&u); err != nil {
			return NewBadRequestError("invalid JSON body", err)
		}
		updated = doc.UpdateText(id, u)

	case kindValue:
		var u document.ValueUpdate
		if err := c.Bind(&u); err != nil {
			return NewBadRequestError("invalid JSON body", err)
		}
		if u.ImageFile != nil && *u.ImageFile != "" {
			normalized, err := h.normalizeImage(sessionID, *u.ImageFile)
			if err != nil {
				return NewFieldError("imageFile", err)
			}
			u.ImageFile = &normalized
		}
		updated = doc.UpdateValue(id, u)

	case kindIcon:
		var u document.IconUpdate
		if err := c.Bind(&u); err != nil {
			return NewBadRequestError("invalid JSON body", err)
		}
		if u.IconFile != nil && *u.IconFile != "" {
			normalized, err := h.normalizeImage(sessionID, *u.IconFile)
			if err != nil {
				return NewFieldError("iconFile", err)
			}
			u.IconFile = &normalized
		}
		updated = doc.UpdateIcon(id, u)

	case kindBarcode:
		var u document.BarcodeUpdate
		if err := c.Bind(&u); err != nil {
			return NewBadRequestError("invalid JSON body", err)
		}
		var verr error
		updated, verr = doc.UpdateBarcode(id, u)
		if verr != nil {
			return NewFieldError("data", verr)
		}

	default:
		return NewValidationError("kind")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated": updated,
		"id":      id,
	})
}

// HandleDeleteElement removes one element. A missing id reports
// deleted=false rather than an error.
func (h *DesignerHandlerImpl) HandleDeleteElement(c echo.Context) error {
	sessionID := c.Param("sessionId")
	doc, ok := h.manager.Doc(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError("id")
	}

	var deleted bool
	switch c.Param("kind") {
	case kindText:
		deleted = doc.DeleteText(id)
	case kindValue:
		deleted = doc.DeleteValue(id)
	case kindIcon:
		deleted = doc.DeleteIcon(id)
	case kindBarcode:
		deleted = doc.DeleteBarcode(id)
	default:
		return NewValidationError("kind")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": deleted,
		"id":      id,
	})
}

// HandleGetDocumentMsgpack returns the document snapshot in msgpack encoding
func (h *DesignerHandlerImpl) HandleGetDocumentMsgpack(c echo.Context) error {
	sessionID := c.Param("sessionId")
	data, ok, err := h.manager.DocumentMsgpack(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}
	if err != nil {
		return NewInternalError("failed to encode document", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleGetPreview returns the latest rendered preview image
func (h *DesignerHandlerImpl) HandleGetPreview(c echo.Context) error {
	sessionID := c.Param("sessionId")
	asset, status, ok := h.manager.Preview(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}
	if asset == nil {
		return NewNotFoundError("preview", sessionID)
	}

	c.Response().Header().Set("X-Preview-Seq", strconv.FormatUint(status.Seq, 10))
	return c.Blob(http.StatusOK, "image/png", asset)
}

// HandleGetPreviewStatus returns the preview synchronizer status
func (h *DesignerHandlerImpl) HandleGetPreviewStatus(c echo.Context) error {
	sessionID := c.Param("sessionId")
	_, status, ok := h.manager.Preview(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}
	return c.JSON(http.StatusOK, status)
}

// HandleSaveSettings persists the session document as a named variant
func (h *DesignerHandlerImpl) HandleSaveSettings(c echo.Context) error {
	sessionID := c.Param("sessionId")

	var req variantRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	err := h.manager.Save(c.Request().Context(), sessionID, req.Name)
	if errors.Is(err, session.ErrSessionNotFound) {
		return NewNotFoundError("session", sessionID)
	}
	if err != nil {
		return NewServiceUnavailableError("failed to save label settings", err)
	}

	variant := req.Name
	if sess, ok := h.manager.Get(sessionID); ok {
		variant = sess.Variant
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"saved":   true,
		"variant": variant,
	})
}

// HandleLoadSettings replaces the session document with a saved variant.
// A missing variant is a normal branch reported via found=false.
func (h *DesignerHandlerImpl) HandleLoadSettings(c echo.Context) error {
	sessionID := c.Param("sessionId")

	var req variantRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	doc, found, err := h.manager.Load(c.Request().Context(), sessionID, req.Name)
	if errors.Is(err, session.ErrSessionNotFound) {
		return NewNotFoundError("session", sessionID)
	}
	if err != nil {
		return NewServiceUnavailableError("failed to load label settings", err)
	}
	if !found {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"found": false,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"found":    true,
		"document": doc,
	})
}

// HandlePrint dispatches a saved variant to the print service, saving
// unsaved edits first
func (h *DesignerHandlerImpl) HandlePrint(c echo.Context) error {
	sessionID := c.Param("sessionId")

	var req variantRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	err := h.manager.Print(c.Request().Context(), sessionID, req.Name)
	if errors.Is(err, session.ErrSessionNotFound) {
		return NewNotFoundError("session", sessionID)
	}
	if err != nil {
		return NewServiceUnavailableError("failed to dispatch print job", err)
	}

	variant := req.Name
	if sess, ok := h.manager.Get(sessionID); ok {
		variant = sess.Variant
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"printed": true,
		"variant": variant,
	})
}

// normalizeImage validates an inline image payload and bounds it to the
// session's label canvas
func (h *DesignerHandlerImpl) normalizeImage(sessionID, payload string) (string, error) {
	sess, ok := h.manager.Get(sessionID)
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return imagepayload.Normalize(payload, h.maxImageBytes,
		sess.Canvas.WidthPx, sess.Canvas.HeightPx)
}

// Request types

type openSessionRequest struct {
	IP string `json:"ip"`
}

type variantRequest struct {
	Name string `json:"name"`
}
