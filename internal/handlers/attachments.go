package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/sirupsen/logrus"
)

type ListAttachmentsOutput struct {
	Body []AttachmentResponse
}

func (h *BookingHandler) HandleListAttachments(ctx context.Context, input *BookingIDInput) (*ListAttachmentsOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	attachments, err := h.store.ListAttachments(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "list attachments")
	}
	res := &ListAttachmentsOutput{Body: make([]AttachmentResponse, 0, len(attachments))}
	for _, a := range attachments {
		res.Body = append(res.Body, h.attachmentResponse(a))
	}
	return res, nil
}

type UploadAttachmentInput struct {
	auth.AuthInput
	BookingID uint `path:"id"`
	Body      struct {
		DocumentID uint `json:"document_id"`
		FileUpload
	}
}

type AttachmentOutput struct {
	Body AttachmentResponse
}

// HandleUploadAttachment stores the file under attachments/<code>/<filename>.
func (h *BookingHandler) HandleUploadAttachment(ctx context.Context, input *UploadAttachmentInput) (*AttachmentOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	booking, err := h.store.GetBooking(ctx, actor, input.BookingID)
	if err != nil {
		return nil, storeError(err, "load booking")
	}
	for _, a := range booking.Attachments {
		if a.DocumentID == input.Body.DocumentID {
			return nil, storeError(store.ErrAttachmentExists, "upload attachment")
		}
	}

	key := storage.AttachmentKey(booking.Code, input.Body.Filename)
	if err := h.files.Put(ctx, key, input.Body.Data, input.Body.ContentType); err != nil {
		logrus.WithError(err).Error("Failed to store attachment")
		return nil, huma.Error500InternalServerError("Failed to store attachment")
	}

	att := models.Attachment{BookingID: booking.ID, DocumentID: input.Body.DocumentID, File: key}
	if err := h.store.CreateAttachment(ctx, actor, &att); err != nil {
		// another upload for the document owns the file now
		if !errors.Is(err, store.ErrAttachmentExists) {
			h.deleteFile(ctx, key)
		}
		return nil, storeError(err, "upload attachment")
	}
	logrus.WithFields(logrus.Fields{"booking": booking.Code, "document": att.Document.Name}).Info("Attachment uploaded")
	return &AttachmentOutput{Body: h.attachmentResponse(att)}, nil
}

func (h *BookingHandler) HandleDeleteAttachment(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	att, err := h.store.DeleteAttachment(ctx, actor, input.ID)
	if err != nil {
		return nil, storeError(err, "delete attachment")
	}
	h.deleteFile(ctx, att.File)
	return nil, nil
}

func (h *BookingHandler) deleteFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.files.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to delete file")
	}
}
