package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

const (
	maxAvatarSizeBytes = 5 * 1024 * 1024

	presignUploadExpiry   = 10 * time.Minute
	presignDownloadExpiry = 1 * time.Hour
)

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PresignAvatarInput is the request body for requesting an avatar upload URL.
type PresignAvatarInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// ConfirmAvatarInput is the request body for confirming a completed avatar upload.
type ConfirmAvatarInput struct {
	Key string `json:"key"`
}

// HandleGetMe returns the caller's user record with a presigned avatar URL.
func HandleGetMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		record, customErr := deps.Users.ByID(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		avatarURL := ""
		if record.AvatarRef != "" {
			url, err := deps.Avatars.PresignDownload(r.Context(), record.AvatarRef, presignDownloadExpiry)
			if err != nil {
				logx.Warn("Failed to presign avatar download", "user_id", record.ID)
			} else {
				avatarURL = url
			}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":      record,
			"avatarUrl": avatarURL,
		})
	}
}

// HandlePresignAvatar validates the upload intent and returns a presigned PUT URL.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext, ok := allowedAvatarTypes[input.MimeType]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTypeInvalid))
			return
		}
		if input.FileSize <= 0 || input.FileSize > maxAvatarSizeBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge))
			return
		}

		key := fmt.Sprintf("avatars/%s/%s%s", identity.ID, uuid.NewString(), ext)

		url, err := deps.Avatars.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignUploadExpiry)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": url,
			"key":       key,
		})
	}
}

// HandleConfirmAvatar verifies the uploaded object and points the user record at it.
// The previous avatar object, if any, is removed in the background.
func HandleConfirmAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		var input ConfirmAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// A caller may only claim keys under its own prefix.
		prefix := fmt.Sprintf("avatars/%s/", identity.ID)
		if !strings.HasPrefix(input.Key, prefix) || strings.Contains(input.Key, "..") {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarKeyInvalid))
			return
		}

		metadata, err := deps.Avatars.Metadata(r.Context(), input.Key)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarKeyInvalid))
			return
		}
		if _, ok := allowedAvatarTypes[metadata["Content-Type"]]; !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTypeInvalid))
			return
		}

		previous, customErr := deps.Users.UpdateAvatar(r.Context(), identity.ID, input.Key)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if previous != "" && previous != input.Key {
			go func(key string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := deps.Avatars.Delete(ctx, key); err != nil {
					logx.Warn("Failed to delete replaced avatar", "key", key)
				}
			}(previous)
		}

		url, err := deps.Avatars.PresignDownload(r.Context(), input.Key, presignDownloadExpiry)
		if err != nil {
			logx.Warn("Failed to presign avatar download", "key", input.Key)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"avatarRef": input.Key,
			"avatarUrl": url,
		})
	}
}
