package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Alturino/shopping-cart/internal/constants"
)

const (
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationRemove   = "remove"
	OperationClearAll = "clear_all"
)

var Meter = otel.Meter(constants.AppShoppingCartService)

var mutations = newMutationCounter()

func newMutationCounter() metric.Int64Counter {
	counter, err := Meter.Int64Counter(
		"shopping_cart.mutations",
		metric.WithDescription("Number of committed shopping cart mutations"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter("").Int64Counter("shopping_cart.mutations")
	}
	return counter
}

// RecordMutation counts a committed mutation, n is the number of carts it touched.
func RecordMutation(c context.Context, operation string, n int64) {
	mutations.Add(c, n, metric.WithAttributes(attribute.String("operation", operation)))
}
