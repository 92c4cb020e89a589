package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/identity"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded user
const DefaultPassword = "Password123!"

var seedHours = []int{9, 10, 11, 14, 15, 16}

var seedUsers = []struct{ name, email string }{
	{"alice admin", "alice@example.com"},
	{"bob manager", "bob@example.com"},
	{"charlie staff", "charlie@example.com"},
	{"david staff", "david@example.com"},
	{"eve manager", "eve@example.com"},
}

var seedClients = []crm.ClientInput{
	{Name: "alice dupont", Email: "alice.dupont@example.com", Phone: "0601020304", Notes: "Regular client"},
	{Name: "bob martin", Email: "bob.martin@example.com", Phone: "0605060708"},
	{Name: "charlie durand", Email: "charlie.durand@example.com", Phone: "0608091011", Notes: "Follow up"},
	{Name: "david leroy", Email: "david.leroy@example.com", Phone: "0611121314"},
	{Name: "eve bernard", Email: "eve.bernard@example.com", Phone: "0615161718", Notes: "Regular client"},
	{Name: "françois petit", Email: "francois.petit@example.com", Phone: "0619202122"},
	{Name: "géraldine moreau", Email: "geraldine.moreau@example.com", Phone: "0623242526", Notes: "Follow up"},
	{Name: "hugo robert", Email: "hugo.robert@example.com", Phone: "0627282930"},
	{Name: "isabelle fabre", Email: "isabelle.fabre@example.com", Phone: "0631323334"},
	{Name: "julien marchand", Email: "julien.marchand@example.com", Phone: "0635363738", Notes: "Regular client"},
}

// appointmentCount is the number of appointments created per run
const appointmentCount = 20

// Summary reports what a run inserted
type Summary struct {
	Users        int
	Clients      int
	Appointments int
}

type seeder struct {
	db    *persistence.Database
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
	title cases.Caser
}

func newSeeder(db *persistence.Database, loc *time.Location, log *zap.Logger) *seeder {
	return &seeder{
		db:    db,
		loc:   loc,
		now:   time.Now,
		log:   log,
		title: cases.Title(language.French),
	}
}

// reset empties the CRM tables, link table first
func (s *seeder) reset(ctx context.Context) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		for _, table := range []string{"appointment_clients", "appointments", "clients", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// run inserts the users, clients and appointments. Users that already
// exist are reused so the command can run twice without --reset.
func (s *seeder) run(ctx context.Context) (Summary, error) {
	var sum Summary
	users := persistence.NewGormUserRepository(s.db.DB)
	clients := persistence.NewGormClientRepository(s.db.DB)
	appointments := persistence.NewGormAppointmentRepository(s.db.DB)

	all, err := users.FindAll(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to load users: %w", err)
	}
	existing := make(map[string]uuid.UUID, len(all))
	for _, u := range all {
		existing[u.Email] = u.ID
	}

	userIDs := make([]uuid.UUID, 0, len(seedUsers))
	for _, u := range seedUsers {
		if id, ok := existing[u.email]; ok {
			userIDs = append(userIDs, id)
			continue
		}
		user, err := identity.NewUser(s.title.String(u.name), u.email, DefaultPassword)
		if err != nil {
			return sum, err
		}
		if err := users.Create(ctx, user); err != nil {
			return sum, fmt.Errorf("failed to create user %s: %w", u.email, err)
		}
		userIDs = append(userIDs, user.ID)
		sum.Users++
	}

	seeded := make([]*crm.Client, 0, len(seedClients))
	for _, in := range seedClients {
		in.Name = s.title.String(in.Name)
		client, err := crm.NewClient(in)
		if err != nil {
			return sum, err
		}
		if err := clients.Create(ctx, client); err != nil {
			return sum, fmt.Errorf("failed to create client %s: %w", in.Name, err)
		}
		seeded = append(seeded, client)
		sum.Clients++
	}

	start := s.now().In(s.loc)
	for i := 0; i < appointmentCount; i++ {
		day := start.AddDate(0, 0, i/len(seedHours)+1)
		at := time.Date(day.Year(), day.Month(), day.Day(), seedHours[i%len(seedHours)], 0, 0, 0, s.loc)

		// One to three clients, rotating through the list.
		n := i%3 + 1
		ids := make([]uuid.UUID, 0, n)
		names := make([]string, 0, n)
		for j := 0; j < n; j++ {
			c := seeded[(i+j)%len(seeded)]
			ids = append(ids, c.ID)
			names = append(names, c.Name)
		}

		appt, err := crm.NewAppointment(userIDs[i%len(userIDs)], at, fmt.Sprintf("Meeting #%d with %s", i+1, names[0]), ids)
		if err != nil {
			return sum, err
		}
		if err := appointments.Create(ctx, appt); err != nil {
			return sum, fmt.Errorf("failed to create appointment %d: %w", i+1, err)
		}
		sum.Appointments++
	}

	s.log.Info("Seed complete",
		zap.Int("users", sum.Users),
		zap.Int("clients", sum.Clients),
		zap.Int("appointments", sum.Appointments),
	)
	return sum, nil
}
