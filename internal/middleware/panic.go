package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/otel"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "middleware RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware RecoverPanic").Logger()
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}
			err, ok := recovered.(error)
			if !ok {
				err = fmt.Errorf("%v", recovered)
			}
			err = fmt.Errorf("recovered from panic with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Stack().Msg(err.Error())
			inHttp.WriteProblem(c, w, r, err)
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
