package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/metrics"
	"lendhub/internal/models"
)

// callerID reads the caller identity header. Every route except user
// management requires it.
func callerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return 0, domain.BadRequestf("missing %s header", userIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadRequestf("invalid %s header: %s", userIDHeader, raw)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadRequestf("invalid id: %s", raw)
	}
	return id, nil
}

// pageParams parses from/size. Absent values come back as zero; the
// services apply defaults and reject negatives.
func pageParams(r *http.Request) (int, int, error) {
	from, size := 0, 0
	if raw := r.URL.Query().Get("from"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.BadRequestf("invalid from: %s", raw)
		}
		from = v
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.BadRequestf("invalid size: %s", raw)
		}
		size = v
	}
	return from, size, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.BadRequestf("invalid request body: %v", err)
	}
	return nil
}

// --- users ---

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_user")

	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := s.users.Create(r.Context(), &models.User{Name: body.Name, Email: body.Email})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_users")

	users, err := s.users.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_user")

	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("update_user")

	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var patch models.UserPatch
	if err := decodeBody(r, &patch); err != nil {
		writeDomainError(w, err)
		return
	}
	user, err := s.users.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_user")

	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- items ---

type itemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   int64  `json:"request_id"`
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_item")

	ownerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var body itemRequest
	if err := decodeBody(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	if body.Name == "" {
		writeDomainError(w, domain.BadRequestf("item name must not be empty"))
		return
	}
	if body.Description == "" {
		writeDomainError(w, domain.BadRequestf("item description must not be empty"))
		return
	}
	if body.Available == nil {
		writeDomainError(w, domain.BadRequestf("item availability must be set"))
		return
	}

	item := &models.Item{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
	}
	created, err := s.items.Create(r.Context(), ownerID, item, body.RequestID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleListOwnerItems(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_owner_items")

	ownerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	views, err := s.items.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("search_items")

	items, err := s.items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_item")

	viewerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := s.items.GetView(r.Context(), itemID, viewerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("update_item")

	ownerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var body struct {
		models.ItemPatch
		RequestID int64 `json:"request_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	item, err := s.items.Update(r.Context(), ownerID, itemID, body.ItemPatch, body.RequestID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_comment")

	authorID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	if body.Text == "" {
		writeDomainError(w, domain.BadRequestf("comment text must not be empty"))
		return
	}

	comment, err := s.items.CreateComment(r.Context(), authorID, itemID, &models.Comment{Text: body.Text})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// --- bookings ---

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	bookerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var body struct {
		ItemID int64     `json:"item_id"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}

	booking := &models.Booking{Start: body.Start, End: body.End}
	created, err := s.bookings.Create(r.Context(), bookerID, booking, body.ItemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("approve_booking")

	ownerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeDomainError(w, domain.BadRequestf("approved query parameter must be true or false"))
		return
	}

	booking, err := s.bookings.Approve(r.Context(), ownerID, bookingID, approved)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cancel_booking")

	bookerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	booking, err := s.bookings.Cancel(r.Context(), bookerID, bookingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_booking")

	userID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	booking, err := s.bookings.GetByIDForUser(r.Context(), bookingID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_booker_bookings")

	bookerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	from, size, err := pageParams(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	bookings, err := s.bookings.ListForBooker(r.Context(), bookerID, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_owner_bookings")

	ownerID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	from, size, err := pageParams(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	bookings, err := s.bookings.ListForOwner(r.Context(), ownerID, r.URL.Query().Get("state"), from, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// --- requests ---

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_request")

	requestorID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var body struct {
		Description string `json:"description"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	if body.Description == "" {
		writeDomainError(w, domain.BadRequestf("request description must not be empty"))
		return
	}

	request, err := s.requests.Create(r.Context(), requestorID, &models.Request{Description: body.Description})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_own_requests")

	userID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	requests, err := s.requests.ListForRequestor(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_other_requests")

	userID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	from, size, err := pageParams(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	requests, err := s.requests.ListOthers(r.Context(), userID, from, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_request")

	userID, err := callerID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	request, err := s.requests.GetByIDForUser(r.Context(), requestID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
