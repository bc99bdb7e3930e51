package statemachine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"food-ordering-api/models"
)

// Actors allowed to drive a transition
const (
	ActorSystem     = "system"
	ActorCustomer   = "customer"
	ActorRestaurant = "restaurant"
	ActorDriver     = "driver"
)

// Transition defines a valid state change and who performs it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Auto-confirmation after the order is placed
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: ActorSystem},
	// Customer can cancel until the kitchen starts
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusReadyForPickup, Actor: ActorRestaurant},
	// Courier picks up and delivers
	{From: models.StatusReadyForPickup, To: models.StatusOutForDelivery, Actor: ActorDriver},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: ActorDriver},
}

// sequence is the forward lifecycle; cancelled sits outside it
var sequence = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReadyForPickup,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// IsValid reports whether s is a known status
func IsValid(s models.OrderStatus) bool {
	return s == models.StatusCancelled || indexOf(s) >= 0
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := []models.OrderStatus{}
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition returns an error wrapping models.ErrInvalidTransition when
// from → to is not in the table.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[transitionKey{from, to}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed; valid transitions from %s: %s",
		models.ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// IsCancellable is true only before the kitchen starts preparing
func IsCancellable(status models.OrderStatus) bool {
	return status == models.StatusPending || status == models.StatusConfirmed
}

func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return append([]Transition(nil), validTransitions...)
}

// Sequence returns the forward lifecycle, delivered included
func Sequence() []models.OrderStatus {
	return append([]models.OrderStatus(nil), sequence...)
}

// Checkpoints are the steps shown while an order is underway
func Checkpoints() []models.OrderStatus {
	return append([]models.OrderStatus(nil), sequence[:len(sequence)-1]...)
}

func indexOf(s models.OrderStatus) int {
	for i, st := range sequence {
		if st == s {
			return i
		}
	}
	return -1
}

type Checkpoint struct {
	Status      models.OrderStatus `json:"status"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Completed   bool               `json:"completed"`
	Current     bool               `json:"current"`
}

// Progress marks every checkpoint relative to status. A cancelled order has
// no position, so nothing is completed.
func Progress(status models.OrderStatus) []Checkpoint {
	current := indexOf(status)
	checkpoints := Checkpoints()
	out := make([]Checkpoint, len(checkpoints))
	for i, s := range checkpoints {
		d := Describe(s)
		out[i] = Checkpoint{
			Status:      s,
			Label:       d.Label,
			Description: d.Description,
			Completed:   current >= 0 && i <= current,
			Current:     i == current,
		}
	}
	return out
}

type StatusInfo struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var statusInfo = map[models.OrderStatus]StatusInfo{
	models.StatusPending:        {"Pending", "Waiting for the restaurant to confirm"},
	models.StatusConfirmed:      {"Confirmed", "The restaurant confirmed the order"},
	models.StatusPreparing:      {"Preparing", "Your order is being prepared"},
	models.StatusReadyForPickup: {"Ready", "Ready for pickup"},
	models.StatusOutForDelivery: {"Out for delivery", "On the way to your address"},
	models.StatusDelivered:      {"Delivered", "Order delivered"},
	models.StatusCancelled:      {"Cancelled", "Order cancelled"},
}

// Describe returns the display label and description of a status
func Describe(status models.OrderStatus) StatusInfo {
	if info, ok := statusInfo[status]; ok {
		return info
	}
	return StatusInfo{Label: string(status)}
}

// RemainingTime is max(0, estimatedDelivery − now)
func RemainingTime(estimatedDelivery, now time.Time) time.Duration {
	d := estimatedDelivery.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RemainingMinutes rounds the remaining time up to whole minutes
func RemainingMinutes(estimatedDelivery, now time.Time) int {
	return int(math.Ceil(RemainingTime(estimatedDelivery, now).Minutes()))
}
