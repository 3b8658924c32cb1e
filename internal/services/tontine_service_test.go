package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/config"
	"github.com/tontiva/tontine-backend/internal/domain"
	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/repositories/memory"
	"github.com/tontiva/tontine-backend/pkg/events"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiresIn: 3600},
		Tontine: config.TontineConfig{
			InviteBaseURL: "http://localhost:3000",
			CodeLength:    6,
			CodeRetries:   5,
		},
	}
}

func newTontineService(cfg *config.Config) (*TontineServiceImpl, *memory.TontineRepository, *memory.ParticipantRepository) {
	tontineRepo := memory.NewTontineRepository()
	participantRepo := memory.NewParticipantRepository()
	svc := NewTontineService(tontineRepo, participantRepo, events.Noop{}, cfg)
	return svc, tontineRepo, participantRepo
}

func newUser(role string) *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Ama",
		LastName:  "Diallo",
		Email:     primitive.NewObjectID().Hex() + "@example.com",
		Role:      role,
	}
}

func createTestTontine(t *testing.T, svc *TontineServiceImpl, initiator *models.User, maxMembers int) *models.Tontine {
	t.Helper()
	req := &models.CreateTontineRequest{
		Name:    "Village savings",
		Kind:    models.KindMoney,
		Amount:  5000,
		Cadence: models.CadenceMonthly,
	}
	if maxMembers > 0 {
		req.MaxMembers = maxMembers
	} else {
		req.UnlimitedMembers = true
	}
	tontine, err := svc.Create(context.Background(), initiator, req)
	require.NoError(t, err)
	return tontine
}

func TestCreateTontine(t *testing.T) {
	svc, _, _ := newTontineService(testConfig())
	initiator := newUser(models.RoleInitiator)

	t.Run("Success", func(t *testing.T) {
		tontine := createTestTontine(t, svc, initiator, 0)

		assert.Equal(t, models.StatusPending, tontine.Status)
		assert.Equal(t, initiator.ID.Hex(), tontine.InitiatorID)
		assert.Len(t, tontine.InviteCode, 6)
		assert.Contains(t, tontine.InviteLink, "/join?code="+tontine.InviteCode)
		assert.Empty(t, tontine.RotationOrder)
	})

	t.Run("Participant Role Forbidden", func(t *testing.T) {
		_, err := svc.Create(context.Background(), newUser(models.RoleParticipant), &models.CreateTontineRequest{
			Name:             "Nope",
			Kind:             models.KindMoney,
			Amount:           1000,
			Cadence:          models.CadenceWeekly,
			UnlimitedMembers: true,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Missing Capacity", func(t *testing.T) {
		_, err := svc.Create(context.Background(), initiator, &models.CreateTontineRequest{
			Name:    "No capacity",
			Kind:    models.KindMoney,
			Amount:  1000,
			Cadence: models.CadenceWeekly,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("Appends To Rotation Order", func(t *testing.T) {
		svc, tontineRepo, _ := newTontineService(testConfig())
		initiator := newUser(models.RoleInitiator)
		tontine := createTestTontine(t, svc, initiator, 0)

		userA := newUser(models.RoleParticipant)
		userB := newUser(models.RoleParticipant)

		pa, err := svc.Join(ctx, tontine.InviteCode, userA)
		require.NoError(t, err)
		assert.Equal(t, 0, pa.Position)
		assert.Equal(t, models.PaymentUnpaid, pa.PaymentStatus)

		pb, err := svc.Join(ctx, tontine.InviteCode, userB)
		require.NoError(t, err)
		assert.Equal(t, 1, pb.Position)

		stored, err := tontineRepo.FindByID(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{userA.ID.Hex(), userB.ID.Hex()}, stored.RotationOrder)
	})

	t.Run("Idempotent", func(t *testing.T) {
		svc, tontineRepo, participantRepo := newTontineService(testConfig())
		tontine := createTestTontine(t, svc, newUser(models.RoleInitiator), 0)
		user := newUser(models.RoleParticipant)

		first, err := svc.Join(ctx, tontine.InviteCode, user)
		require.NoError(t, err)
		second, err := svc.Join(ctx, tontine.InviteCode, user)
		require.NoError(t, err)
		assert.Equal(t, first.UserID, second.UserID)

		count, err := participantRepo.CountByTontine(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		stored, err := tontineRepo.FindByID(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Len(t, stored.RotationOrder, 1)
	})

	t.Run("Capacity Exceeded", func(t *testing.T) {
		svc, _, _ := newTontineService(testConfig())
		tontine := createTestTontine(t, svc, newUser(models.RoleInitiator), 2)

		_, err := svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		require.NoError(t, err)
		_, err = svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		require.NoError(t, err)

		_, err = svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})

	t.Run("Case Insensitive Code", func(t *testing.T) {
		svc, _, _ := newTontineService(testConfig())
		tontine := createTestTontine(t, svc, newUser(models.RoleInitiator), 0)

		_, err := svc.Join(ctx, "  ", newUser(models.RoleParticipant))
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = svc.Join(ctx, strings.ToLower(tontine.InviteCode), newUser(models.RoleParticipant))
		assert.NoError(t, err)
	})

	t.Run("Allowed While Suspended", func(t *testing.T) {
		svc, _, _ := newTontineService(testConfig())
		initiator := newUser(models.RoleInitiator)
		tontine := createTestTontine(t, svc, initiator, 0)

		_, err := svc.ChangeStatus(ctx, tontine.ID, initiator.ID.Hex(), models.StatusActive)
		require.NoError(t, err)
		_, err = svc.ChangeStatus(ctx, tontine.ID, initiator.ID.Hex(), models.StatusSuspended)
		require.NoError(t, err)

		_, err = svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		assert.NoError(t, err)
	})

	t.Run("Rejected When Completed", func(t *testing.T) {
		svc, _, _ := newTontineService(testConfig())
		initiator := newUser(models.RoleInitiator)
		tontine := createTestTontine(t, svc, initiator, 0)

		_, err := svc.ChangeStatus(ctx, tontine.ID, initiator.ID.Hex(), models.StatusCompleted)
		require.NoError(t, err)

		_, err = svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Lifecycle Transitions", func(t *testing.T) {
		svc, _, _ := newTontineService(testConfig())
		initiator := newUser(models.RoleInitiator)
		actor := initiator.ID.Hex()
		tontine := createTestTontine(t, svc, initiator, 0)

		// pending -> suspended is not a legal transition
		_, err := svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusSuspended)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		updated, err := svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, updated.Status)

		updated, err = svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuspended, updated.Status)

		updated, err = svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, updated.Status)

		updated, err = svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, updated.Status)

		// completed is terminal
		_, err = svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusActive)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Non Initiator Forbidden", func(t *testing.T) {
		svc, tontineRepo, _ := newTontineService(testConfig())
		tontine := createTestTontine(t, svc, newUser(models.RoleInitiator), 0)

		_, err := svc.ChangeStatus(ctx, tontine.ID, newUser(models.RoleParticipant).ID.Hex(), models.StatusActive)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		stored, err := tontineRepo.FindByID(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("Minimum Roster Policy", func(t *testing.T) {
		cfg := testConfig()
		cfg.Tontine.MinRosterSize = 2
		svc, _, _ := newTontineService(cfg)
		initiator := newUser(models.RoleInitiator)
		actor := initiator.ID.Hex()
		tontine := createTestTontine(t, svc, initiator, 0)

		_, err := svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusActive)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		_, err = svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		require.NoError(t, err)
		_, err = svc.Join(ctx, tontine.InviteCode, newUser(models.RoleParticipant))
		require.NoError(t, err)

		_, err = svc.ChangeStatus(ctx, tontine.ID, actor, models.StatusActive)
		assert.NoError(t, err)
	})

	t.Run("Unknown Tontine", func(t *testing.T) {
		svc, _, _ := newTontineService(testConfig())
		_, err := svc.ChangeStatus(ctx, primitive.NewObjectID(), "nobody", models.StatusActive)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReorder(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*TontineServiceImpl, *memory.TontineRepository, *models.Tontine, string, string, string) {
		svc, tontineRepo, _ := newTontineService(testConfig())
		initiator := newUser(models.RoleInitiator)
		tontine := createTestTontine(t, svc, initiator, 0)
		userA := newUser(models.RoleParticipant)
		userB := newUser(models.RoleParticipant)
		_, err := svc.Join(ctx, tontine.InviteCode, userA)
		require.NoError(t, err)
		_, err = svc.Join(ctx, tontine.InviteCode, userB)
		require.NoError(t, err)
		return svc, tontineRepo, tontine, initiator.ID.Hex(), userA.ID.Hex(), userB.ID.Hex()
	}

	t.Run("Success", func(t *testing.T) {
		svc, tontineRepo, tontine, actor, a, b := setup(t)

		updated, err := svc.Reorder(ctx, tontine.ID, actor, []string{b, a})
		require.NoError(t, err)
		assert.Equal(t, []string{b, a}, updated.RotationOrder)

		stored, err := tontineRepo.FindByID(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{b, a}, stored.RotationOrder)
	})

	t.Run("Non Initiator Forbidden", func(t *testing.T) {
		svc, tontineRepo, tontine, _, a, b := setup(t)

		_, err := svc.Reorder(ctx, tontine.ID, a, []string{b, a})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		stored, err := tontineRepo.FindByID(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, stored.RotationOrder)
	})

	t.Run("Missing Id", func(t *testing.T) {
		svc, tontineRepo, tontine, actor, a, b := setup(t)

		_, err := svc.Reorder(ctx, tontine.ID, actor, []string{b})
		assert.ErrorIs(t, err, domain.ErrInvalidOrder)

		stored, err := tontineRepo.FindByID(ctx, tontine.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, stored.RotationOrder)
	})

	t.Run("Foreign Id", func(t *testing.T) {
		svc, _, tontine, actor, a, _ := setup(t)

		_, err := svc.Reorder(ctx, tontine.ID, actor, []string{a, primitive.NewObjectID().Hex()})
		assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	})

	t.Run("Duplicate Id", func(t *testing.T) {
		svc, _, tontine, actor, a, _ := setup(t)

		_, err := svc.Reorder(ctx, tontine.ID, actor, []string{a, a})
		assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	})

	t.Run("Positions Recomputed From Order", func(t *testing.T) {
		svc, _, tontine, actor, a, b := setup(t)

		_, err := svc.Reorder(ctx, tontine.ID, actor, []string{b, a})
		require.NoError(t, err)

		roster, err := svc.Roster(ctx, tontine.ID)
		require.NoError(t, err)
		positions := make(map[string]int, len(roster))
		for _, p := range roster {
			positions[p.UserID] = p.Position
		}
		assert.Equal(t, 0, positions[b])
		assert.Equal(t, 1, positions[a])
	})
}

func TestResolveInviteCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTontineService(testConfig())
	tontine := createTestTontine(t, svc, newUser(models.RoleInitiator), 0)

	preview, err := svc.ResolveInviteCode(ctx, tontine.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, tontine.ID.Hex(), preview.TontineID)
	assert.Equal(t, tontine.Name, preview.Name)

	_, err = svc.ResolveInviteCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTontineService(testConfig())
	initiator := newUser(models.RoleInitiator)
	member := newUser(models.RoleParticipant)

	first := createTestTontine(t, svc, initiator, 0)
	second := createTestTontine(t, svc, initiator, 0)
	_, err := svc.Join(ctx, second.InviteCode, member)
	require.NoError(t, err)

	mine, err := svc.ListForUser(ctx, initiator.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	joined, err := svc.ListForUser(ctx, member.ID.Hex())
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, second.ID, joined[0].ID)
	assert.NotEqual(t, first.ID, joined[0].ID)
}
