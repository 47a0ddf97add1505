package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/validate"
	"github.com/Alturino/shopping-cart/shoppingcart/internal/otel"
	"github.com/Alturino/shopping-cart/shoppingcart/pkg/request"
	"github.com/Alturino/shopping-cart/shoppingcart/pkg/response"
)

const (
	keyPathID = "id"

	pathShoppingCart     = "/shopping-cart"
	pathShoppingCartByID = "/shopping-cart/{id}"
)

type ShoppingCartService interface {
	Create(c context.Context, param request.CreateShoppingCart) (response.ShoppingCart, error)
	FindAll(c context.Context) ([]response.ShoppingCart, error)
	FindById(c context.Context, cartID uuid.UUID) (response.ShoppingCart, error)
	Update(c context.Context, cartID uuid.UUID, param request.UpdateShoppingCart) (response.ShoppingCart, error)
	Remove(c context.Context, cartID uuid.UUID) error
}

type ShoppingCartController struct {
	service   ShoppingCartService
	validator *validate.Validator
}

func AttachShoppingCartController(
	mux *mux.Router,
	service ShoppingCartService,
	validator *validate.Validator,
) {
	controller := ShoppingCartController{service: service, validator: validator}

	mux.HandleFunc(pathShoppingCart, controller.FindAll).Methods(http.MethodGet)
	mux.HandleFunc(pathShoppingCart, controller.Create).Methods(http.MethodPost)
	mux.HandleFunc(pathShoppingCartByID, controller.FindById).Methods(http.MethodGet)
	mux.HandleFunc(pathShoppingCartByID, controller.Update).Methods(http.MethodPut)
	mux.HandleFunc(pathShoppingCartByID, controller.Remove).Methods(http.MethodDelete)
}

// NotFound and MethodNotAllowed answer unmatched requests with a problem detail.
func NotFound(w http.ResponseWriter, r *http.Request) {
	inHttp.WriteProblem(r.Context(), w, r, &inErrors.NotFoundError{Resource: "Route", ID: r.URL.Path})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	err := fmt.Errorf("method=%s on path=%s %w", r.Method, r.URL.Path, inErrors.ErrMethodNotAllowed)
	inHttp.WriteProblem(r.Context(), w, r, err)
}

func decode(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return &inErrors.BadRequestError{Err: fmt.Errorf("malformed request body: %w", err)}
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)[keyPathID]
	cartID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &inErrors.BadRequestError{Err: fmt.Errorf("id=%s is not a valid UUID", raw)}
	}
	return cartID, nil
}

func (t ShoppingCartController) Create(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShoppingCartController Create")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartController Create").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.CreateShoppingCart{}
	if err := decode(r, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	if err := t.validator.Struct(reqBody); err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "creating shopping cart").Logger()
	logger.Info().Msg("creating shopping cart")
	cart, err := t.service.Create(logger.WithContext(c), reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Str(log.KeyCartID, cart.ID.String()).Msg("created shopping cart")

	inHttp.WriteJsonResponse(c, w, http.StatusCreated, map[string]string{}, cart)
}

func (t ShoppingCartController) FindAll(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShoppingCartController FindAll")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ShoppingCartController FindAll").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding shopping carts").Logger()
	logger.Info().Msg("finding shopping carts")
	carts, err := t.service.FindAll(logger.WithContext(c))
	if err != nil {
		err = fmt.Errorf("failed finding shopping carts with error=%w", err)
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Int(log.KeyCartCount, len(carts)).Msg("found shopping carts")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, map[string]string{}, carts)
}

func (t ShoppingCartController) FindById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShoppingCartController FindById")
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "ShoppingCartController FindById").
		Str(log.KeyProcess, "validating uuid").
		Logger()

	cartID, err := pathID(r)
	if err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	span.SetAttributes(attribute.String(log.KeyCartID, cartID.String()))
	logger = logger.With().
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyProcess, "finding shopping cart").
		Logger()

	logger.Info().Msg("finding shopping cart")
	cart, err := t.service.FindById(logger.WithContext(c), cartID)
	if err != nil {
		err = fmt.Errorf("failed finding shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("found shopping cart")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, map[string]string{}, cart)
}

func (t ShoppingCartController) Update(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShoppingCartController Update")
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "ShoppingCartController Update").
		Str(log.KeyProcess, "validating uuid").
		Logger()

	cartID, err := pathID(r)
	if err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	span.SetAttributes(attribute.String(log.KeyCartID, cartID.String()))
	logger = logger.With().Str(log.KeyCartID, cartID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.UpdateShoppingCart{}
	if err := decode(r, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	if err := t.validator.Struct(reqBody); err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "updating shopping cart").Logger()
	logger.Info().Msg("updating shopping cart")
	cart, err := t.service.Update(logger.WithContext(c), cartID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("updated shopping cart")

	inHttp.WriteJsonResponse(c, w, http.StatusOK, map[string]string{}, cart)
}

func (t ShoppingCartController) Remove(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShoppingCartController Remove")
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "ShoppingCartController Remove").
		Str(log.KeyProcess, "validating uuid").
		Logger()

	cartID, err := pathID(r)
	if err != nil {
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	span.SetAttributes(attribute.String(log.KeyCartID, cartID.String()))
	logger = logger.With().
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyProcess, "removing shopping cart").
		Logger()

	logger.Info().Msg("removing shopping cart")
	if err := t.service.Remove(logger.WithContext(c), cartID); err != nil {
		err = fmt.Errorf("failed removing shopping cart with error=%w", err)
		inErrors.HandleError(err, span)
		inHttp.WriteProblem(c, w, r, err)
		return
	}
	logger.Info().Msg("removed shopping cart")

	inHttp.WriteJsonResponse(c, w, http.StatusNoContent, map[string]string{}, nil)
}
