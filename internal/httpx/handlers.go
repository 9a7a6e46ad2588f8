package httpx

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
	"github.com/fernandokenjii/desafio-database-relations/internal/service/placement"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour

	maxRequestBody = 1 << 20
)

// Handler объединяет HTTP-обработчики API заказов.
type Handler struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	placement placement.Service
	idemRepo  domain.IdempotencyRepository
	logger    *log.Entry
}

// NewHandler создаёт обработчики API. idemRepo может быть nil — тогда
// заголовок Idempotency-Key игнорируется.
func NewHandler(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	placementService placement.Service,
	idemRepo domain.IdempotencyRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
		placement: placementService,
		idemRepo:  idemRepo,
		logger:    logger,
	}
}

// Register монтирует маршруты API на роутер.
func (h *Handler) Register(r chi.Router) {
	r.Post("/customers", h.createCustomer)
	r.Get("/customers/{id}", h.getCustomer)
	r.Get("/customers/{id}/orders", h.listCustomerOrders)
	r.Post("/products", h.createProduct)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type productRequest struct {
	Name         string `json:"name"`
	PriceMinor   int64  `json:"price_minor"`
	AvailableQty int32  `json:"available_qty"`
}

type productResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceMinor   int64     `json:"price_minor"`
	AvailableQty int32     `json:"available_qty"`
	CreatedAt    time.Time `json:"created_at"`
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type orderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []orderLineRequest `json:"items"`
}

type orderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	AmountMinor int64               `json:"amount_minor"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	customer, err := h.customers.Create(domain.Customer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	product, err := h.products.Create(domain.ProductRecord{
		Name:         strings.TrimSpace(req.Name),
		PriceMinor:   req.PriceMinor,
		AvailableQty: req.AvailableQty,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeError(w, errBadRequest("failed to read request body"))
		return
	}

	var req orderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, errBadRequest("invalid json"))
		return
	}

	statusCode, payload := h.withIdempotency(r, body, func() (int, any) {
		return h.placeOrder(req)
	})
	writeJSON(w, statusCode, payload)
}

// placeOrder выполняет размещение и возвращает готовую пару статус/тело.
func (h *Handler) placeOrder(req orderRequest) (int, any) {
	items := make([]domain.LineItemRequest, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, domain.LineItemRequest{ProductID: line.ProductID, Qty: line.Qty})
	}

	order, err := h.placement.Place(strings.TrimSpace(req.CustomerID), items)
	if err != nil {
		return statusForError(err), errorResponse{Error: err.Error()}
	}
	return http.StatusCreated, toOrderResponse(order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")
	if _, err := h.customers.FindByID(customerID); err != nil {
		h.writeError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, errBadRequest("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	orders, err := h.orders.ListByCustomer(customerID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, result)
}

// withIdempotency оборачивает обработчик в протокол Idempotency-Key:
// повтор с тем же ключом и телом возвращает закэшированный ответ, повтор с
// другим телом отклоняется, параллельный повтор получает 409.
func (h *Handler) withIdempotency(r *http.Request, body []byte, handler func() (int, any)) (int, any) {
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if h.idemRepo == nil || key == "" {
		return handler()
	}

	reqHash := buildRequestHash(r.Method, r.URL.Path, body)

	record, err := h.idemRepo.CreateProcessing(key, reqHash, time.Now().UTC().Add(idempotencyTTL))
	if err != nil {
		return h.replayIdempotency(key, err, record)
	}

	statusCode, payload := handler()

	cached, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		h.logger.WithError(marshalErr).WithField("idempotency_key", key).Warn("failed to encode idempotency cache payload")
		cached = nil
	}

	var markErr error
	if statusCode < http.StatusBadRequest {
		markErr = h.idemRepo.MarkDone(key, cached, statusCode)
	} else {
		markErr = h.idemRepo.MarkFailed(key, cached, statusCode)
	}
	if markErr != nil {
		h.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotency response")
	}

	return statusCode, payload
}

func (h *Handler) replayIdempotency(key string, createErr error, record domain.IdempotencyRecord) (int, any) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		return http.StatusConflict, errorResponse{Error: "idempotency key is already used with different request payload"}
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			if len(record.ResponseBody) == 0 {
				return http.StatusInternalServerError, errorResponse{Error: "idempotency cache is empty"}
			}
			statusCode := record.HTTPStatus
			if statusCode == 0 {
				statusCode = http.StatusOK
			}
			return statusCode, json.RawMessage(record.ResponseBody)
		case domain.IdempotencyStatusProcessing:
			return http.StatusConflict, errorResponse{Error: "request with the same idempotency key is already processing"}
		default:
			return http.StatusInternalServerError, errorResponse{Error: "unknown idempotency record status"}
		}
	default:
		h.logger.WithError(createErr).WithField("idempotency_key", key).Warn("failed to create idempotency record")
		return http.StatusInternalServerError, errorResponse{Error: "failed to initialize idempotency request"}
	}
}

func buildRequestHash(method, path string, body []byte) string {
	payload := make([]byte, 0, len(method)+len(path)+len(body)+2)
	payload = append(payload, method...)
	payload = append(payload, ':')
	payload = append(payload, path...)
	payload = append(payload, ':')
	payload = append(payload, body...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		h.writeError(w, errBadRequest("invalid json"))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	statusCode := statusForError(err)
	if statusCode >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	writeJSON(w, statusCode, errorResponse{Error: err.Error()})
}

type badRequestError struct {
	msg string
}

func (e badRequestError) Error() string { return e.msg }

func errBadRequest(msg string) error { return badRequestError{msg: msg} }

// statusForError сопоставляет ошибки доменной таксономии HTTP-статусам.
func statusForError(err error) int {
	var badReq badRequestError
	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCustomer),
		errors.Is(err, domain.ErrInvalidProduct):
		return http.StatusBadRequest
	case domain.IsInsufficientStock(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCustomerEmailTaken),
		errors.Is(err, domain.ErrProductNameTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case domain.IsCompensationFailed(err), errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusInternalServerError
	}

	// Ошибки доменной валидации (пустые поля, неположительные количества).
	if isValidationError(err) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func isValidationError(err error) bool {
	validation := []error{
		domain.ErrCustomerNameRequired,
		domain.ErrCustomerEmailRequired,
		domain.ErrProductNameRequired,
		domain.ErrProductPriceNegative,
		domain.ErrProductQtyNegative,
		domain.ErrLineProductRequired,
		domain.ErrLineQtyInvalid,
		domain.ErrItemsRequired,
		domain.ErrCustomerRequired,
	}
	for _, target := range validation {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func toCustomerResponse(customer domain.Customer) customerResponse {
	return customerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt,
	}
}

func toProductResponse(product domain.ProductRecord) productResponse {
	return productResponse{
		ID:           product.ID,
		Name:         product.Name,
		PriceMinor:   product.PriceMinor,
		AvailableQty: product.AvailableQty,
		CreatedAt:    product.CreatedAt,
	}
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}
	return orderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}
