package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Player
// ──────────────────────────────────────────────────────────────────────────────

// Player is the item being auctioned. The auction core treats it as opaque;
// these fields exist for the catalog endpoints only.
type Player struct {
	ID       uuid.UUID `json:"id"       db:"id"`
	Name     string    `json:"name"     db:"name"`
	Team     string    `json:"team"     db:"team"`
	Position string    `json:"position" db:"position"`
}

// ──────────────────────────────────────────────────────────────────────────────
// League & Roster
// ──────────────────────────────────────────────────────────────────────────────

// League is the owning context for a set of auctions and rosters.
type League struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Size      int       `json:"size"       db:"size"`
	SalaryCap int64     `json:"salary_cap" db:"salary_cap"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Roster is one bidder's squad in a league, with its salary-cap bookkeeping.
// TotalSalary is a denormalized sum of the roster_players salaries.
type Roster struct {
	ID          uuid.UUID `json:"id"           db:"id"`
	LeagueID    uuid.UUID `json:"league_id"    db:"league_id"`
	UserID      uuid.UUID `json:"user_id"      db:"user_id"`
	SalaryCap   int64     `json:"salary_cap"   db:"salary_cap"`
	TotalSalary int64     `json:"total_salary" db:"total_salary"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// Remaining returns the budget left under the cap.
func (r *Roster) Remaining() int64 {
	return r.SalaryCap - r.TotalSalary
}

// CanAfford reports whether adding a player at salary fits under the cap.
func (r *Roster) CanAfford(salary int64) bool {
	return r.TotalSalary+salary <= r.SalaryCap
}

// CapUtilization returns the percentage of the salary cap committed (0–100).
// Returns decimal.Zero for a zero cap.
func (r *Roster) CapUtilization() decimal.Decimal {
	if r.SalaryCap == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(r.TotalSalary).
		Div(decimal.NewFromInt(r.SalaryCap)).
		Mul(decimal.NewFromInt(100))
}

// RosterPlayer records one won auction: the player joins the roster at the
// final visible price. AuctionID is unique, which is what makes settlement's
// allocation call safe to repeat.
type RosterPlayer struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	RosterID  uuid.UUID `json:"roster_id"  db:"roster_id"`
	PlayerID  uuid.UUID `json:"player_id"  db:"player_id"`
	AuctionID uuid.UUID `json:"auction_id" db:"auction_id"`
	Salary    int64     `json:"salary"     db:"salary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocation — the settlement → roster boundary
// ──────────────────────────────────────────────────────────────────────────────

// Allocation carries the single outbound call settlement makes: debit this
// bidder's budget with this player at this price. AuctionID is the
// deduplication key.
type Allocation struct {
	AuctionID uuid.UUID
	LeagueID  uuid.UUID
	BidderID  uuid.UUID
	PlayerID  uuid.UUID
	Price     int64
}

// ──────────────────────────────────────────────────────────────────────────────
// RosterSummary — read model for league views
// ──────────────────────────────────────────────────────────────────────────────

// RosterSummary is a derived, read-only view of one roster for list endpoints.
type RosterSummary struct {
	RosterID       uuid.UUID       `json:"roster_id"`
	UserID         uuid.UUID       `json:"user_id"`
	PlayerCount    int             `json:"player_count"`
	TotalSalary    int64           `json:"total_salary"`
	Remaining      int64           `json:"remaining"`
	CapUtilization decimal.Decimal `json:"cap_utilization"`
}

// ToSummary builds a RosterSummary with the given player count.
func (r *Roster) ToSummary(playerCount int) RosterSummary {
	return RosterSummary{
		RosterID:       r.ID,
		UserID:         r.UserID,
		PlayerCount:    playerCount,
		TotalSalary:    r.TotalSalary,
		Remaining:      r.Remaining(),
		CapUtilization: r.CapUtilization(),
	}
}
