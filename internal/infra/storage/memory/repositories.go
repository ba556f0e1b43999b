package memory

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("memory: record not found")
	ErrDuplicate = errors.New("memory: record already exists")
)

// User is an account that can sign in.
type User struct {
	ID           primitive.ObjectID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	TeamID       primitive.ObjectID
}

// Message is stored with bson tags so handlers can render it as extended JSON.
type Message struct {
	ID         primitive.ObjectID `bson:"_id"`
	SenderID   string             `bson:"senderId"`
	ReceiverID string             `bson:"receiverId"`
	Text       string             `bson:"text"`
	IsRead     bool               `bson:"isRead"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// Summary is one row of a user's conversation list.
type Summary struct {
	OtherUserID string
	Last        Message
	Unread      int
}

type Injury struct {
	ID             primitive.ObjectID `bson:"_id"`
	PlayerID       primitive.ObjectID `bson:"playerId"`
	Type           string             `bson:"type"`
	Description    string             `bson:"description,omitempty"`
	Severity       string             `bson:"severity,omitempty"`
	Status         string             `bson:"status"`
	InjuredAt      time.Time          `bson:"injuredAt"`
	ExpectedReturn *time.Time         `bson:"expectedReturn,omitempty"`
	PhotoURL       string             `bson:"photoUrl,omitempty"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

type Stadium struct {
	ID        primitive.ObjectID
	Name      string
	City      string
	Address   string
	Capacity  int
	Surface   string
	Latitude  float64
	Longitude float64
	GeoJSON   bool
}

type Player struct {
	ID        primitive.ObjectID
	TeamID    primitive.ObjectID
	FirstName string
	LastName  string
	Position  string
	Number    int
	BirthDate *time.Time
}

// FullName joins first and last name.
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type Team struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

type Match struct {
	ID        primitive.ObjectID  `bson:"_id"`
	HomeTeam  primitive.ObjectID  `bson:"homeTeam"`
	AwayTeam  primitive.ObjectID  `bson:"awayTeam"`
	Date      time.Time           `bson:"date"`
	StadiumID *primitive.ObjectID `bson:"stadium,omitempty"`
	Status    string              `bson:"status"`
	HomeScore *int                `bson:"homeScore,omitempty"`
	AwayScore *int                `bson:"awayScore,omitempty"`
}

type Tournament struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	StartDate time.Time          `bson:"startDate"`
	EndDate   time.Time          `bson:"endDate"`
	Teams     []Team             `bson:"teams"`
	Matches   []Match            `bson:"matches"`
}

// Academy holds every record the dev backend serves.
type Academy struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]User
	messages    []Message
	injuries    map[primitive.ObjectID]Injury
	stadiums    []Stadium
	players     map[primitive.ObjectID]Player
	tournaments []Tournament
}

func NewAcademy() *Academy {
	return &Academy{
		users:    make(map[primitive.ObjectID]User),
		injuries: make(map[primitive.ObjectID]Injury),
		players:  make(map[primitive.ObjectID]Player),
	}
}

// AddUser registers u; emails are unique, case-insensitively.
func (a *Academy) AddUser(u User) (User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range a.users {
		if existing.Email == u.Email {
			return User{}, ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	a.users[u.ID] = u
	return u, nil
}

func (a *Academy) UserByEmail(email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, u := range a.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (a *Academy) UserByID(id string) (User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[oid]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// AddMessage stores a new unread message from sender to receiver.
func (a *Academy) AddMessage(sender, receiver, text string, now time.Time) Message {
	msg := Message{
		ID:         primitive.NewObjectID(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()
	return msg
}

// Thread returns the messages exchanged by x and y, oldest first.
func (a *Academy) Thread(x, y string) []Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []Message
	for _, m := range a.messages {
		if (m.SenderID == x && m.ReceiverID == y) || (m.SenderID == y && m.ReceiverID == x) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Conversations summarises user's threads, most recent first.
func (a *Academy) Conversations(user string) []Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	index := make(map[string]int)
	var out []Summary
	for _, m := range a.messages {
		var other string
		switch user {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		i, ok := index[other]
		if !ok {
			i = len(out)
			index[other] = i
			out = append(out, Summary{OtherUserID: other, Last: m})
		}
		if !m.CreatedAt.Before(out[i].Last.CreatedAt) {
			out[i].Last = m
		}
		if m.ReceiverID == user && !m.IsRead {
			out[i].Unread++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Last.CreatedAt.After(out[j].Last.CreatedAt) })
	return out
}

// MarkRead marks every message other sent to user read and returns the count.
func (a *Academy) MarkRead(user, other string, now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for i, m := range a.messages {
		if m.ReceiverID == user && m.SenderID == other && !m.IsRead {
			a.messages[i].IsRead = true
			a.messages[i].UpdatedAt = now.UTC()
			n++
		}
	}
	return n
}

// Injuries lists injuries, optionally for one player, newest first.
func (a *Academy) Injuries(player string) []Injury {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Injury, 0, len(a.injuries))
	for _, in := range a.injuries {
		if player != "" && in.PlayerID.Hex() != player {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InjuredAt.Equal(out[j].InjuredAt) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].InjuredAt.After(out[j].InjuredAt)
	})
	return out
}

// SaveInjury inserts or replaces in.
func (a *Academy) SaveInjury(in Injury) Injury {
	if in.ID.IsZero() {
		in.ID = primitive.NewObjectID()
	}
	a.mu.Lock()
	a.injuries[in.ID] = in
	a.mu.Unlock()
	return in
}

func (a *Academy) InjuryByID(id string) (Injury, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Injury{}, ErrNotFound
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	in, ok := a.injuries[oid]
	if !ok {
		return Injury{}, ErrNotFound
	}
	return in, nil
}

func (a *Academy) AddStadium(s Stadium) Stadium {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	a.mu.Lock()
	a.stadiums = append(a.stadiums, s)
	a.mu.Unlock()
	return s
}

func (a *Academy) Stadiums() []Stadium {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Stadium(nil), a.stadiums...)
}

// Players lists a team's players ordered by id.
func (a *Academy) Players(team string) []Player {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []Player
	for _, p := range a.players {
		if p.TeamID.Hex() == team {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (a *Academy) PlayerByID(id string) (Player, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Player{}, ErrNotFound
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.players[oid]
	if !ok {
		return Player{}, ErrNotFound
	}
	return p, nil
}

func (a *Academy) AddPlayer(p Player) Player {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	a.mu.Lock()
	a.players[p.ID] = p
	a.mu.Unlock()
	return p
}

// RemovePlayer deletes player id from team.
func (a *Academy) RemovePlayer(team, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for oid, p := range a.players {
		if oid.Hex() == id && p.TeamID.Hex() == team {
			delete(a.players, oid)
			return nil
		}
	}
	return ErrNotFound
}

func (a *Academy) AddTournament(t Tournament) Tournament {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	a.mu.Lock()
	a.tournaments = append(a.tournaments, t)
	a.mu.Unlock()
	return t
}

func (a *Academy) Tournaments() []Tournament {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Tournament(nil), a.tournaments...)
}
