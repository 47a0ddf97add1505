package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/Alturino/shopping-cart/internal/constants"
)

var Tracer = otel.Tracer(constants.AppMain)
