package db

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Table names, also used as counter keys for NextID.
const (
	TableUsers          = "users"
	TableProducts       = "products"
	TableRequests       = "requests"
	TableOffers         = "offers"
	TableChats          = "chats"
	TableMessages       = "messages"
	TableRatings        = "ratings"
	TablePasswordResets = "passwordResets"
	TableNotifications  = "notifications"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// RequestStatus is the lifecycle of a buyer's request.
//
// Forward-only: OPEN -> NEGOTIATING -> CLOSED -> ACCEPTED, plus OPEN -> CANCELLED.
type RequestStatus string

const (
	RequestOpen        RequestStatus = "OPEN"
	RequestNegotiating RequestStatus = "NEGOTIATING"
	RequestClosed      RequestStatus = "CLOSED"
	RequestAccepted    RequestStatus = "ACCEPTED"
	RequestCancelled   RequestStatus = "CANCELLED"
)

// OfferStatus is the lifecycle of a seller's bid. Everything but SUBMITTED is terminal.
type OfferStatus string

const (
	OfferSubmitted OfferStatus = "SUBMITTED"
	OfferAccepted  OfferStatus = "ACCEPTED"
	OfferRejected  OfferStatus = "REJECTED"
	OfferWithdrawn OfferStatus = "WITHDRAWN"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

type NotificationType string

const (
	NotifyNewRequest      NotificationType = "NEW_REQUEST"
	NotifyNewOffer        NotificationType = "NEW_OFFER"
	NotifyOfferAccepted   NotificationType = "OFFER_ACCEPTED"
	NotifyOfferRejected   NotificationType = "OFFER_REJECTED"
	NotifyRequestClosed   NotificationType = "REQUEST_CLOSED"
	NotifyRequestAccepted NotificationType = "REQUEST_ACCEPTED"
	NotifyNewMessage      NotificationType = "NEW_MESSAGE"
)

type EtaUnit string

const (
	EtaMinutes EtaUnit = "min"
	EtaHours   EtaUnit = "hours"
	EtaDays    EtaUnit = "days"
)

// Minutes converts an ETA to minutes. Unknown units return -1.
func (u EtaUnit) Minutes(value int) int {
	switch u {
	case EtaMinutes:
		return value
	case EtaHours:
		return value * 60
	case EtaDays:
		return value * 60 * 24
	default:
		return -1
	}
}

func (u EtaUnit) Valid() bool {
	return u.Minutes(1) > 0
}

// SystemSender is the sender id of messages generated by the engine itself.
const SystemSender = "system"

// MaxFrequentAddresses bounds User.FrequentAddresses.
const MaxFrequentAddresses = 5

type User struct {
	ID                string     `json:"id"`
	Role              Role       `json:"role"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	Password          string     `json:"password,omitempty"` // bcrypt hash
	CreatedAt         time.Time  `json:"createdAt"`
	RatingAvg         float64    `json:"ratingAvg"`
	RatingCount       int        `json:"ratingCount"`
	Location          *Location  `json:"location,omitempty"`
	Department        string     `json:"department,omitempty"`
	City              string     `json:"city,omitempty"`
	Address           string     `json:"address,omitempty"`
	BusinessName      string     `json:"businessName,omitempty"`
	FrequentAddresses []Location `json:"frequentAddresses,omitempty"`
}

// Public returns a copy of u without the password hash.
func (u User) Public() User {
	u.Password = ""
	u.FrequentAddresses = slices.Clone(u.FrequentAddresses)
	return u
}

// RememberAddress puts loc at the front of the user's frequent addresses,
// unless an address at the same spot is already there. It reports whether
// the list changed.
func (u *User) RememberAddress(loc Location) bool {
	for _, a := range u.FrequentAddresses {
		if a.SameSpot(loc) {
			return false
		}
	}
	next := make([]Location, 0, MaxFrequentAddresses)
	next = append(next, loc)
	next = append(next, u.FrequentAddresses...)
	if len(next) > MaxFrequentAddresses {
		next = next[:MaxFrequentAddresses]
	}
	u.FrequentAddresses = next
	return true
}

type Product struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"sellerId"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PriceBase  *float64  `json:"priceBase,omitempty"`
	EtaValue   *int      `json:"etaValue,omitempty"`
	EtaUnit    EtaUnit   `json:"etaUnit,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Conditions string    `json:"conditions,omitempty"`
	Images     []string  `json:"images"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Request struct {
	ID              string        `json:"id"`
	BuyerID         string        `json:"buyerId"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Quantity        *float64      `json:"quantity,omitempty"`
	Unit            string        `json:"unit,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Category        string        `json:"category,omitempty"`
	Location        Location      `json:"location"`
	Status          RequestStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	AcceptedOfferID string        `json:"acceptedOfferId,omitempty"`
}

type Offer struct {
	ID          string      `json:"id"`
	RequestID   string      `json:"requestId"`
	SellerID    string      `json:"sellerId"`
	Price       float64     `json:"price"`
	EtaValue    int         `json:"etaValue"`
	EtaUnit     EtaUnit     `json:"etaUnit"`
	Notes       string      `json:"notes,omitempty"`
	Attachments []string    `json:"attachments"`
	Status      OfferStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Chat struct {
	ID        string    `json:"id"`
	RequestID string    `json:"requestId"`
	BuyerID   string    `json:"buyerId"`
	SellerID  string    `json:"sellerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant reports whether userID is one of the chat's two parties.
func (c Chat) Participant(userID string) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// Counterpart returns the party that is not userID.
func (c Chat) Counterpart(userID string) string {
	if userID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}

type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	SenderID  string      `json:"senderId"`
	Type      MessageType `json:"type"`
	Text      string      `json:"text,omitempty"`
	URI       string      `json:"uri,omitempty"`
	FileName  string      `json:"fileName,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Rating struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"requestId"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Stars      int       `json:"stars"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PasswordReset struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	OTPCode   string    `json:"otpCode"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"createdAt"`
	Read      bool              `json:"read"`
}

// Database is the whole document: every table plus the id counters.
type Database struct {
	Users          []User          `json:"users"`
	Products       []Product       `json:"products"`
	Requests       []Request       `json:"requests"`
	Offers         []Offer         `json:"offers"`
	Chats          []Chat          `json:"chats"`
	Messages       []Message       `json:"messages"`
	Ratings        []Rating        `json:"ratings"`
	PasswordResets []PasswordReset `json:"passwordResets"`
	Notifications  []Notification  `json:"notifications"`
	Counters       map[string]int  `json:"counters"`
}

// NextID bumps the counter for table and returns the table's first letter
// followed by the new value. A missing counter starts at 0.
func (d *Database) NextID(table string) string {
	if d.Counters == nil {
		d.Counters = make(map[string]int)
	}
	next := d.Counters[table] + 1
	d.Counters[table] = next
	return table[:1] + strconv.Itoa(next)
}

// The Find helpers return pointers into the tables, valid until the next append.

func (d *Database) FindUser(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// FindUserByEmail matches email case-insensitively.
func (d *Database) FindUserByEmail(email string) *User {
	email = strings.TrimSpace(email)
	for i := range d.Users {
		if strings.EqualFold(d.Users[i].Email, email) {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Database) FindProduct(id string) *Product {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i]
		}
	}
	return nil
}

func (d *Database) FindRequest(id string) *Request {
	for i := range d.Requests {
		if d.Requests[i].ID == id {
			return &d.Requests[i]
		}
	}
	return nil
}

func (d *Database) FindOffer(id string) *Offer {
	for i := range d.Offers {
		if d.Offers[i].ID == id {
			return &d.Offers[i]
		}
	}
	return nil
}

func (d *Database) FindChat(id string) *Chat {
	for i := range d.Chats {
		if d.Chats[i].ID == id {
			return &d.Chats[i]
		}
	}
	return nil
}

func (d *Database) FindNotification(id string) *Notification {
	for i := range d.Notifications {
		if d.Notifications[i].ID == id {
			return &d.Notifications[i]
		}
	}
	return nil
}

// Counts returns the number of rows per table.
func (d *Database) Counts() map[string]int {
	return map[string]int{
		TableUsers:          len(d.Users),
		TableProducts:       len(d.Products),
		TableRequests:       len(d.Requests),
		TableOffers:         len(d.Offers),
		TableChats:          len(d.Chats),
		TableMessages:       len(d.Messages),
		TableRatings:        len(d.Ratings),
		TablePasswordResets: len(d.PasswordResets),
		TableNotifications:  len(d.Notifications),
	}
}
