package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/DevYoma/zora-be/internal/core/domain"
	"github.com/DevYoma/zora-be/internal/core/service"
	"github.com/DevYoma/zora-be/internal/port"
)

type HTTPHandler struct {
	tickets  *service.TicketService
	events   *service.EventService
	blobs    port.BlobRepository // nil when uploads are disabled
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewHTTPHandler(tickets *service.TicketService, events *service.EventService, blobs port.BlobRepository, logger *logrus.Logger) *HTTPHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPHandler{
		tickets:  tickets,
		events:   events,
		blobs:    blobs,
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/", h.Welcome).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	r.HandleFunc("/api/events", h.ListEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/events", h.CreateEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/events/{id}", h.GetEvent).Methods(http.MethodGet)

	r.HandleFunc("/api/tickets", h.Purchase).Methods(http.MethodPost)
	r.HandleFunc("/api/tickets/verify", h.VerifyByCode).Methods(http.MethodPost)
	r.HandleFunc("/api/tickets/{id}/verify", h.VerifyTicket).Methods(http.MethodPut)
	r.HandleFunc("/api/tickets/owner/{address}", h.TicketsByOwner).Methods(http.MethodGet)

	r.HandleFunc("/api/totalPrice", h.TotalRevenue).Methods(http.MethodGet)
	r.HandleFunc("/api/upload/image", h.UploadImage).Methods(http.MethodPost)
}

type createEventRequest struct {
	Name              string  `json:"name" validate:"required"`
	Date              string  `json:"date" validate:"required"`
	Time              string  `json:"time" validate:"required"`
	Location          string  `json:"location" validate:"required"`
	Description       string  `json:"description"`
	TicketPrice       float64 `json:"ticketPrice" validate:"gte=0"`
	TicketQuantity    int     `json:"ticketQuantity" validate:"required,min=1"`
	ImageURL          string  `json:"imageUrl"`
	CollectionAddress string  `json:"collectionAddress" validate:"required"`
	CreatorAddress    string  `json:"creatorAddress" validate:"required"`
	TransactionHash   string  `json:"transactionHash" validate:"required"`
}

type purchaseRequest struct {
	EventID         string   `json:"eventId" validate:"required"`
	BuyerAddress    string   `json:"buyerAddress" validate:"required"`
	Quantity        int      `json:"quantity" validate:"omitempty,min=1"`
	TokenIDs        []string `json:"tokenIds"`
	TransactionHash string   `json:"transactionHash" validate:"required"`
	RequestID       string   `json:"requestId"`
}

type verifyCodeRequest struct {
	Code         string `json:"code" validate:"required"`
	RequireProof *bool  `json:"requireProof"`
}

type purchaseResponse struct {
	TicketIDs []string        `json:"ticketIds"`
	Tickets   []ticketPayload `json:"tickets"`
}

type verifyResponse struct {
	Valid  bool           `json:"valid"`
	Ticket *ticketPayload `json:"ticket,omitempty"`
	Event  *eventPayload  `json:"event,omitempty"`
}

type ticketPayload struct {
	ID                      string     `json:"id"`
	EventID                 string     `json:"eventId"`
	TokenID                 string     `json:"tokenId"`
	OwnerAddress            string     `json:"ownerAddress"`
	PurchaseTransactionHash string     `json:"purchaseTransactionHash"`
	IsUsed                  bool       `json:"isUsed"`
	UsedAt                  *time.Time `json:"usedAt,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`

	// Event is embedded in by-owner listings.
	Event *eventPayload `json:"event,omitempty"`
}

type eventPayload struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Date              string  `json:"date"`
	Time              string  `json:"time"`
	Location          string  `json:"location"`
	TicketPrice       float64 `json:"ticketPrice"`
	TicketQuantity    int     `json:"ticketQuantity"`
	AvailableTickets  int     `json:"availableTickets"`
	ImageURL          string  `json:"imageUrl,omitempty"`
	CollectionAddress string  `json:"collectionAddress"`
	CreatorAddress    string  `json:"creatorAddress"`
}

type errorResponse struct {
	Error       string     `json:"error"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
	ActualOwner string     `json:"actualOwner,omitempty"`
}

func (h *HTTPHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the zora ticketing API"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}

	event, err := h.events.CreateEvent(r.Context(), domain.Event{
		Name:              req.Name,
		Description:       req.Description,
		Date:              req.Date,
		Time:              req.Time,
		Location:          req.Location,
		TicketPrice:       req.TicketPrice,
		TicketQuantity:    req.TicketQuantity,
		ImageURL:          req.ImageURL,
		CollectionAddress: req.CollectionAddress,
		CreatorAddress:    req.CreatorAddress,
		TransactionHash:   req.TransactionHash,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventPayload(event))
}

func (h *HTTPHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	payload := make([]eventPayload, 0, len(events))
	for _, e := range events {
		payload = append(payload, *toEventPayload(e))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *HTTPHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventPayload(*event))
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}
	if req.Quantity == 0 && len(req.TokenIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity or tokenIds required"})
		return
	}

	tickets, err := h.tickets.Purchase(r.Context(), service.PurchaseRequest{
		EventID:      req.EventID,
		BuyerAddress: req.BuyerAddress,
		Quantity:     req.Quantity,
		TokenIDs:     req.TokenIDs,
		TxHash:       req.TransactionHash,
		RequestID:    req.RequestID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := purchaseResponse{
		TicketIDs: make([]string, 0, len(tickets)),
		Tickets:   make([]ticketPayload, 0, len(tickets)),
	}
	for _, t := range tickets {
		resp.TicketIDs = append(resp.TicketIDs, t.ID)
		resp.Tickets = append(resp.Tickets, *toTicketPayload(t))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	requireProof := true
	if q := r.URL.Query().Get("proof"); q != "" {
		if parsed, err := strconv.ParseBool(q); err == nil {
			requireProof = parsed
		}
	}

	result, err := h.tickets.Redeem(r.Context(), mux.Vars(r)["id"], requireProof)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeRedemption(w, result)
}

func (h *HTTPHandler) VerifyByCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}

	requireProof := true
	if req.RequireProof != nil {
		requireProof = *req.RequireProof
	}

	result, err := h.tickets.RedeemByCode(r.Context(), req.Code, requireProof)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeRedemption(w, result)
}

func (h *HTTPHandler) TicketsByOwner(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.events.TicketsByOwner(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	payload := make([]ticketPayload, 0, len(tickets))
	for _, t := range tickets {
		p := toTicketPayload(t.Ticket)
		if t.Event != nil {
			p.Event = toEventPayload(*t.Event)
		}
		payload = append(payload, *p)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *HTTPHandler) TotalRevenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.events.TotalRevenue(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"totalPrice": total})
}

func (h *HTTPHandler) writeRedemption(w http.ResponseWriter, result *service.RedemptionResult) {
	resp := verifyResponse{
		Valid:  true,
		Ticket: toTicketPayload(result.Ticket),
	}
	if result.Event != nil {
		resp.Event = toEventPayload(*result.Event)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, err error) {
	var usedErr *service.AlreadyUsedError
	var mismatchErr *service.OwnershipMismatchError

	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})

	case errors.As(err, &usedErr):
		resp := errorResponse{Error: "Ticket already used"}
		if !usedErr.UsedAt.IsZero() {
			resp.UsedAt = &usedErr.UsedAt
		}
		writeJSON(w, http.StatusConflict, resp)

	case errors.As(err, &mismatchErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "Ticket ownership verification failed",
			ActualOwner: mismatchErr.ActualOwner,
		})

	case errors.Is(err, service.ErrInsufficientInventory):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Not enough tickets available"})

	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrDuplicatePurchase),
		errors.Is(err, service.ErrAmbiguousCode):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidPurchase),
		errors.Is(err, service.ErrInvalidEvent):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, service.ErrVerifierUnavailable):
		h.logger.WithError(err).Warn("transient dependency failure")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable"})

	default:
		h.logger.WithError(err).Error("unhandled service error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func toTicketPayload(t domain.Ticket) *ticketPayload {
	return &ticketPayload{
		ID:                      t.ID,
		EventID:                 t.EventID,
		TokenID:                 t.TokenID,
		OwnerAddress:            t.OwnerAddress,
		PurchaseTransactionHash: t.PurchaseTransactionHash,
		IsUsed:                  t.IsUsed,
		UsedAt:                  t.UsedAt,
		CreatedAt:               t.CreatedAt,
	}
}

func toEventPayload(e domain.Event) *eventPayload {
	return &eventPayload{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		Date:              e.Date,
		Time:              e.Time,
		Location:          e.Location,
		TicketPrice:       e.TicketPrice,
		TicketQuantity:    e.TicketQuantity,
		AvailableTickets:  e.AvailableTickets,
		ImageURL:          e.ImageURL,
		CollectionAddress: e.CollectionAddress,
		CreatorAddress:    e.CreatorAddress,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
