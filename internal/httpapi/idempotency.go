package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/commerce/internal/idempotency"
)

// Заголовки идемпотентного повтора запроса.
const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyReplayed  = "Idempotency-Replayed"
)

// bodyRecorder перехватывает тело ответа для сохранения в idempotency store.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// withIdempotency делает мутирующий handler идемпотентным по заголовку
// Idempotency-Key: повтор запроса с тем же ключом возвращает сохранённый
// ответ без повторного выполнения. Запрос без заголовка проходит как есть.
func (s *Server) withIdempotency(handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyKeyHeader)
		if key == "" || s.idem == nil {
			handler(c)
			return
		}

		ctx := c.Request.Context()
		if record, found, err := s.idem.Get(ctx, key); err != nil {
			s.logger.WithError(err).WithField("idempotency_key", key).
				Warn("idempotency lookup failed, processing request without replay")
		} else if found {
			c.Header(idempotencyReplayed, "true")
			c.Data(record.Status, "application/json", record.Body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		handler(c)

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			// Серверные ошибки не фиксируем: клиент должен иметь
			// возможность повторить запрос с тем же ключом.
			return
		}

		if _, err := s.idem.Put(ctx, key, idempotency.Record{Status: status, Body: recorder.body.Bytes()}); err != nil {
			s.logger.WithError(err).WithField("idempotency_key", key).
				Warn("failed to store idempotency record")
		}
	}
}
