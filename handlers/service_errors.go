package handlers

import (
	"net/http"

	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)
	var writeErr error

	// GenerationError is checked first: it may wrap a breaker or transport error.
	if genErr, ok := services.AsGenerationError(err); ok {
		logger.Warn("generation provider failed",
			zap.String("provider", genErr.Provider),
			zap.Int("status", genErr.Status),
			zap.Error(err))
		writeErr = utils.WriteBadGateway(w, err.Error(), map[string]interface{}{
			"provider": genErr.Provider,
			"status":   genErr.Status,
			"body":     genErr.Body,
		})
		logWriteError(logger, writeErr)
		return
	}

	switch {
	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, err.Error())

	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, err.Error(), details)

	case services.IsUnauthorizedError(err):
		writeErr = utils.WriteUnauthorized(w, err.Error())

	case services.IsForbiddenError(err):
		writeErr = utils.WriteForbidden(w, err.Error())

	case services.IsRateLimitError(err):
		writeErr = utils.WriteTooManyRequests(w, err.Error(), details)

	case services.IsConflictError(err):
		writeErr = utils.WriteConflict(w, err.Error(), details)

	case services.IsExternalError(err):
		logger.Warn("external provider error", zap.Error(err))
		writeErr = utils.WriteBadGateway(w, err.Error(), details)

	case services.IsConfigurationError(err):
		// details carry the setting name only
		logger.Error("service misconfigured", zap.Error(err))
		writeErr = utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse{
			Error:   "configuration_error",
			Message: err.Error(),
			Details: details,
		})

	case services.IsIndexingError(err):
		logger.Error("indexing failed", zap.Error(err), zap.Any("details", details))
		writeErr = utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse{
			Error:   "indexing_error",
			Message: "Indexing failed",
			Details: details,
		})

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	logWriteError(logger, writeErr)
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		logWriteError(logger, utils.WriteBadRequest(w, "Validation failed", details))
		return
	}

	logWriteError(logger, utils.WriteBadRequest(w, err.Error(), nil))
}

func logWriteError(logger *zap.Logger, err error) {
	if err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}
