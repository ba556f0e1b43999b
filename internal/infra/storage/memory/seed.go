package memory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "academy"

// Seeded names the records Seed created.
type Seeded struct {
	Coach   User
	Parent  User
	Medic   User
	Team    primitive.ObjectID
	Players []Player
}

// Seed fills a with a small academy: three staff accounts, one team with
// players, a chat history, injuries, stadiums and a tournament.
func Seed(a *Academy, hash func(string) (string, error), now time.Time) (Seeded, error) {
	pw, err := hash(SeedPassword)
	if err != nil {
		return Seeded{}, err
	}
	team := primitive.NewObjectID()
	var out Seeded
	out.Team = team
	for _, u := range []*User{
		{Email: "coach@academy.test", Name: "Dana Coach", Role: "coach", TeamID: team},
		{Email: "parent@academy.test", Name: "Sam Parent", Role: "parent"},
		{Email: "medic@academy.test", Name: "Alex Medic", Role: "medic"},
	} {
		u.PasswordHash = pw
		saved, err := a.AddUser(*u)
		if err != nil {
			return Seeded{}, err
		}
		*u = saved
		switch saved.Role {
		case "coach":
			out.Coach = saved
		case "parent":
			out.Parent = saved
		default:
			out.Medic = saved
		}
	}

	birth := time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC)
	for _, p := range []Player{
		{FirstName: "Leo", LastName: "Grant", Position: "forward", Number: 9, BirthDate: &birth},
		{FirstName: "Mia", LastName: "Torres", Position: "goalkeeper", Number: 1},
		{FirstName: "Noah", LastName: "Kim", Position: "defender"},
	} {
		p.TeamID = team
		out.Players = append(out.Players, a.AddPlayer(p))
	}

	coach, parent, medic := out.Coach.ID.Hex(), out.Parent.ID.Hex(), out.Medic.ID.Hex()
	a.AddMessage(parent, coach, "Is training still on tomorrow?", now.Add(-3*time.Hour))
	a.AddMessage(coach, parent, "Yes, 5pm at the north pitch.", now.Add(-170*time.Minute))
	a.AddMessage(parent, coach, "Great, see you there.", now.Add(-2*time.Hour))
	a.AddMessage(medic, coach, "Leo's ankle looks better.", now.Add(-time.Hour))

	back := now.Add(10 * 24 * time.Hour)
	a.SaveInjury(Injury{
		PlayerID:       out.Players[0].ID,
		Type:           "ankle sprain",
		Severity:       "moderate",
		Status:         "recovering",
		InjuredAt:      now.Add(-5 * 24 * time.Hour).UTC(),
		ExpectedReturn: &back,
		UpdatedAt:      now.Add(-time.Hour).UTC(),
	})
	a.SaveInjury(Injury{
		PlayerID:  out.Players[1].ID,
		Type:      "bruised finger",
		Severity:  "minor",
		Status:    "resolved",
		InjuredAt: now.Add(-30 * 24 * time.Hour).UTC(),
		UpdatedAt: now.Add(-20 * 24 * time.Hour).UTC(),
	})

	north := a.AddStadium(Stadium{Name: "North Pitch", City: "Springfield", Address: "1 Academy Way", Capacity: 500, Surface: "grass", Latitude: 51.5072, Longitude: -0.1276})
	a.AddStadium(Stadium{Name: "Arena Park", City: "Shelbyville", Capacity: 4200, Surface: "artificial", Latitude: 51.4545, Longitude: -2.5879, GeoJSON: true})

	rival := Team{ID: primitive.NewObjectID(), Name: "Shelbyville Juniors"}
	home := Team{ID: team, Name: "Academy U13"}
	played, homeScore, awayScore := now.Add(-7*24*time.Hour).UTC(), 2, 1
	a.AddTournament(Tournament{
		Name:      "Spring Cup",
		StartDate: now.Add(-14 * 24 * time.Hour).UTC(),
		EndDate:   now.Add(14 * 24 * time.Hour).UTC(),
		Teams:     []Team{home, rival},
		Matches: []Match{
			{ID: primitive.NewObjectID(), HomeTeam: rival.ID, AwayTeam: home.ID, Date: now.Add(3 * 24 * time.Hour).UTC(), StadiumID: &north.ID, Status: "scheduled"},
			{ID: primitive.NewObjectID(), HomeTeam: home.ID, AwayTeam: rival.ID, Date: played, Status: "finished", HomeScore: &homeScore, AwayScore: &awayScore},
		},
	})
	return out, nil
}
