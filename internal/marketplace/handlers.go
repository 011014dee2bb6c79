package marketplace

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/middleware"
)

type Handler struct {
	svc   *Service
	store *db.Store
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, store: svc.store}
}

// ===== Requests =====

// CreateRequest posts a new request for the authenticated buyer
func (h *Handler) CreateRequest(c echo.Context) error {
	var in CreateRequestInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	in.BuyerID = middleware.UserID(c)

	req, err := h.svc.CreateRequest(c.Request().Context(), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": req})
}

func (h *Handler) MyRequests(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"requests": h.svc.GetRequestsByBuyer(middleware.UserID(c))})
}

type openRequestItem struct {
	db.Request
	Offered    bool     `json:"offered"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// OpenRequests lists OPEN requests for a seller, flagging the ones they
// already bid on and the distance from their location when known.
func (h *Handler) OpenRequests(c echo.Context) error {
	sellerID := middleware.UserID(c)
	offered := h.svc.SellerOfferedRequestIDs(sellerID)

	var origin *db.Location
	h.store.View(func(d *db.Database) {
		if u := d.FindUser(sellerID); u != nil && u.Location != nil {
			loc := *u.Location
			origin = &loc
		}
	})

	items := []openRequestItem{}
	for _, r := range h.svc.GetOpenRequests() {
		item := openRequestItem{Request: r}
		_, item.Offered = offered[r.ID]
		if origin != nil {
			km := origin.DistanceKm(r.Location)
			item.DistanceKm = &km
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}

func (h *Handler) GetRequest(c echo.Context) error {
	req, err := h.svc.GetRequestByID(c.Param("id"))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": req})
}

// ownRequest loads the request and checks the caller is its buyer.
func (h *Handler) ownRequest(c echo.Context, requestID string) (db.Request, error) {
	req, err := h.svc.GetRequestByID(requestID)
	if err != nil {
		return db.Request{}, err
	}
	if req.BuyerID != middleware.UserID(c) {
		return db.Request{}, apperr.Forbidden("only the buyer who posted the request can do this")
	}
	return req, nil
}

func (h *Handler) UpdateRequestStatus(c echo.Context) error {
	var body struct {
		Status          db.RequestStatus `json:"status"`
		AcceptedOfferID string           `json:"acceptedOfferId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	id := c.Param("id")
	if _, err := h.ownRequest(c, id); err != nil {
		return middleware.RespondError(c, err)
	}

	req, err := h.svc.UpdateRequestStatus(c.Request().Context(), id, body.Status, body.AcceptedOfferID)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": req})
}

// ===== Offers =====

// ListOffers returns a request's offers. The buyer sees all of them, a
// seller only their own.
func (h *Handler) ListOffers(c echo.Context) error {
	uid := middleware.UserID(c)
	req, err := h.svc.GetRequestByID(c.Param("id"))
	if err != nil {
		return middleware.RespondError(c, err)
	}

	offers := h.svc.GetOffersByRequest(req.ID)
	if req.BuyerID != uid {
		mine := []db.Offer{}
		for _, o := range offers {
			if o.SellerID == uid {
				mine = append(mine, o)
			}
		}
		offers = mine
	}
	switch c.QueryParam("sort") {
	case "", "price":
	case "eta":
		offers = SortOffersByETA(offers)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sort must be price or eta"})
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": offers})
}

func (h *Handler) CreateOffer(c echo.Context) error {
	var in CreateOfferInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	in.RequestID = c.Param("id")
	in.SellerID = middleware.UserID(c)

	offer, err := h.svc.CreateOffer(c.Request().Context(), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"offer": offer})
}

func (h *Handler) MyOffers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"offers": h.svc.GetOffersBySeller(middleware.UserID(c))})
}

func (h *Handler) GetOffer(c echo.Context) error {
	uid := middleware.UserID(c)
	offer, err := h.svc.GetOfferByID(c.Param("id"))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	if offer.SellerID != uid {
		if _, err := h.ownRequest(c, offer.RequestID); err != nil {
			return middleware.RespondError(c, apperr.NotFound("offer", offer.ID))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"offer": offer})
}

// offerForBuyer loads an offer and checks the caller owns its request.
func (h *Handler) offerForBuyer(c echo.Context) (db.Offer, error) {
	offer, err := h.svc.GetOfferByID(c.Param("id"))
	if err != nil {
		return db.Offer{}, err
	}
	if _, err := h.ownRequest(c, offer.RequestID); err != nil {
		return db.Offer{}, err
	}
	return offer, nil
}

func (h *Handler) AcceptOffer(c echo.Context) error {
	offer, err := h.offerForBuyer(c)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	acc, err := h.svc.AcceptOffer(c.Request().Context(), offer.ID)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *Handler) RejectOffer(c echo.Context) error {
	offer, err := h.offerForBuyer(c)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	rejected, err := h.svc.RejectOffer(c.Request().Context(), offer.ID)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"offer": rejected})
}

func (h *Handler) WithdrawOffer(c echo.Context) error {
	offer, err := h.svc.WithdrawOffer(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"offer": offer})
}

// ===== Ratings =====

// CreateRating rates the counterpart of a request. toUserId defaults to the
// other party of the accepted offer.
func (h *Handler) CreateRating(c echo.Context) error {
	var body struct {
		ToUserID string `json:"toUserId"`
		Stars    int    `json:"stars"`
		Comment  string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	in := CreateRatingInput{
		RequestID:  c.Param("id"),
		FromUserID: middleware.UserID(c),
		ToUserID:   body.ToUserID,
		Stars:      body.Stars,
		Comment:    body.Comment,
	}
	if in.ToUserID == "" {
		if to, ok := h.svc.CanRate(in.RequestID, in.FromUserID); ok {
			in.ToUserID = to
		}
	}

	rating, err := h.svc.CreateRating(c.Request().Context(), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"rating": rating})
}

func (h *Handler) RequestRatings(c echo.Context) error {
	requestID := c.Param("id")
	_, canRate := h.svc.CanRate(requestID, middleware.UserID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"ratings": h.svc.GetRatingsByRequest(requestID),
		"canRate": canRate,
	})
}

// UserRatings returns the ratings a user received with a summary
func (h *Handler) UserRatings(c echo.Context) error {
	userID := c.Param("id")
	summary, err := h.svc.GetRatingSummary(userID)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"summary": summary,
		"ratings": h.svc.GetRatingsForUser(userID),
	})
}

// ===== Products =====

func (h *Handler) CreateProduct(c echo.Context) error {
	var in ProductInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	product, err := h.svc.CreateProduct(c.Request().Context(), middleware.UserID(c), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

func (h *Handler) MyProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"products": h.svc.GetProductsBySeller(middleware.UserID(c))})
}

func (h *Handler) SellerProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"products": h.svc.GetProductsBySeller(c.Param("id"))})
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	var in ProductInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	product, err := h.svc.UpdateProduct(c.Request().Context(), c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.svc.DeleteProduct(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
