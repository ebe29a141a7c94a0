package store

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dieginin/hubsync/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *Manager {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	m := New(db)
	if err := m.CreateTables(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return m
}

func TestCreateUserRoundTrip(t *testing.T) {
	m := setupTestDB(t)
	created, err := m.CreateUser("Ada Lovelace", "ada@example.com", "ada", "s3cret", models.RoleMember)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("created user has no id")
	}

	got, err := m.GetUserByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil {
		t.Fatalf("user not found after create")
	}
	if got.Username != "ada" || got.DisplayName != "Ada Lovelace" || got.Role != models.RoleMember {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Password == "s3cret" {
		t.Fatalf("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("s3cret")) != nil {
		t.Fatalf("stored hash does not verify against original password")
	}
}

func TestGetUserAbsentIsNilNotError(t *testing.T) {
	m := setupTestDB(t)
	for _, fn := range []func() (*models.User, error){
		func() (*models.User, error) { return m.GetUserByID(99) },
		func() (*models.User, error) { return m.GetUserByEmail("nobody@example.com") },
		func() (*models.User, error) { return m.GetUserByUsername("nobody") },
	} {
		u, err := fn()
		if err != nil {
			t.Fatalf("lookup returned error for absent user: %v", err)
		}
		if u != nil {
			t.Fatalf("lookup returned phantom user: %+v", u)
		}
	}
}

func TestDeleteUserProtectsPrimaryAdmin(t *testing.T) {
	m := setupTestDB(t)
	if _, err := m.CreateUser("Root", "root@example.com", "root", "pw", models.RoleSuperadmin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := m.CreateUser("Other", "other@example.com", "other", "pw", models.RoleMember); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := m.DeleteUser(models.PrimaryAdminID)
	if resp.OK() {
		t.Fatalf("primary admin was deleted")
	}
	if resp.Message != "Cannot delete the primary admin user" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	resp = m.DeleteUser(2)
	if !resp.OK() {
		t.Fatalf("delete user 2 failed: %s", resp.Message)
	}
	if u, _ := m.GetUserByID(2); u != nil {
		t.Fatalf("user 2 still present after delete")
	}

	resp = m.DeleteUser(42)
	if resp.OK() || resp.Message != "User not found" {
		t.Errorf("expected not-found failure, got %+v", resp)
	}
}

func TestUpdateUserProfileCollisions(t *testing.T) {
	m := setupTestDB(t)
	if _, err := m.CreateUser("One", "one@example.com", "one", "pw", models.RoleMember); err != nil {
		t.Fatalf("seed: %v", err)
	}
	two, err := m.CreateUser("Two", "two@example.com", "two", "pw", models.RoleMember)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := m.UpdateUserProfile(two.ID, "Two", "one@example.com", "two", "")
	if resp.OK() || resp.Message != "Email already exists" {
		t.Errorf("email collision not rejected: %+v", resp)
	}
	resp = m.UpdateUserProfile(two.ID, "Two", "two@example.com", "one", "")
	if resp.OK() || resp.Message != "Username already exists" {
		t.Errorf("username collision not rejected: %+v", resp)
	}

	// Re-submitting one's own email and username is a safe no-op.
	resp = m.UpdateUserProfile(two.ID, "Two Renamed", "two@example.com", "two", "")
	if !resp.OK() {
		t.Fatalf("self-collision rejected: %s", resp.Message)
	}
	got, _ := m.GetUserByID(two.ID)
	if got.DisplayName != "Two Renamed" {
		t.Errorf("display name not updated: %q", got.DisplayName)
	}
	if got.Role != models.RoleMember {
		t.Errorf("role changed without being provided: %q", got.Role)
	}

	resp = m.UpdateUserProfile(two.ID, "Two Renamed", "two@example.com", "two", models.RoleAdmin)
	if !resp.OK() {
		t.Fatalf("role update failed: %s", resp.Message)
	}
	got, _ = m.GetUserByID(two.ID)
	if got.Role != models.RoleAdmin {
		t.Errorf("role not updated: %q", got.Role)
	}

	resp = m.UpdateUserProfile(99, "X", "x@example.com", "x", "")
	if resp.OK() || resp.Message != "User not found" {
		t.Errorf("expected not-found failure, got %+v", resp)
	}
}

func TestChangePassword(t *testing.T) {
	m := setupTestDB(t)
	if _, err := m.CreateUser("Ada", "ada@example.com", "ada", "oldpw", models.RoleMember); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := m.ChangePassword("wrong", "newpw", "ada@example.com")
	if resp.OK() || resp.Message != "Current password is incorrect" {
		t.Errorf("wrong current password accepted: %+v", resp)
	}
	resp = m.ChangePassword("oldpw", "newpw", "missing@example.com")
	if resp.OK() || resp.Message != "User not found" {
		t.Errorf("expected not-found failure, got %+v", resp)
	}

	resp = m.ChangePassword("oldpw", "newpw", "ada@example.com")
	if !resp.OK() {
		t.Fatalf("change password failed: %s", resp.Message)
	}
	got, _ := m.GetUserByEmail("ada@example.com")
	if bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("newpw")) != nil {
		t.Fatalf("new password does not verify")
	}
}

func TestResetPasswordSkipsCurrentCheck(t *testing.T) {
	m := setupTestDB(t)
	if _, err := m.CreateUser("Ada", "ada@example.com", "ada", "oldpw", models.RoleMember); err != nil {
		t.Fatalf("seed: %v", err)
	}
	resp := m.ResetPassword("freshpw", "ada@example.com")
	if !resp.OK() {
		t.Fatalf("reset failed: %s", resp.Message)
	}
	got, _ := m.GetUserByEmail("ada@example.com")
	if bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("freshpw")) != nil {
		t.Fatalf("reset password does not verify")
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	m := setupTestDB(t)
	user, err := m.CreateUser("Ada", "ada@example.com", "ada", "pw", models.RoleMember)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	raw, err := m.GeneratePasswordResetToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) < 43 { // 32 bytes base64url encoded
		t.Fatalf("token too short for 32 bytes of entropy: %d chars", len(raw))
	}

	email, tok, err := m.VerifyPasswordResetToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if email != "ada@example.com" || tok == nil {
		t.Fatalf("verify returned (%q, %v)", email, tok)
	}
	if tok.Used {
		t.Fatalf("fresh token already used")
	}

	if err := m.MarkTokenUsed(tok); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	email, tok, err = m.VerifyPasswordResetToken(raw)
	if err != nil {
		t.Fatalf("verify used: %v", err)
	}
	if email != "" || tok != nil {
		t.Fatalf("used token still verifies")
	}
}

func TestResetTokenUnknownAndExpired(t *testing.T) {
	m := setupTestDB(t)
	user, err := m.CreateUser("Ada", "ada@example.com", "ada", "pw", models.RoleMember)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	email, tok, err := m.VerifyPasswordResetToken("bogus")
	if err != nil || email != "" || tok != nil {
		t.Fatalf("unknown token verified: (%q, %v, %v)", email, tok, err)
	}

	raw, err := m.GeneratePasswordResetToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Force the token past its expiry.
	if err := m.db.Model(&models.PasswordResetToken{}).Where("token = ?", raw).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("age token: %v", err)
	}

	email, tok, err = m.VerifyPasswordResetToken(raw)
	if err != nil {
		t.Fatalf("verify expired: %v", err)
	}
	if email != "" || tok != nil {
		t.Fatalf("expired token verified")
	}
	// Expired tokens are garbage-collected on verification.
	var count int64
	m.db.Model(&models.PasswordResetToken{}).Where("token = ?", raw).Count(&count)
	if count != 0 {
		t.Fatalf("expired token row survived verification")
	}
}

func TestCreateRoomUnique(t *testing.T) {
	m := setupTestDB(t)
	if resp := m.CreateRoom("A"); !resp.OK() {
		t.Fatalf("create room: %s", resp.Message)
	}
	resp := m.CreateRoom("A")
	if resp.OK() || resp.Message != "Room already exists" {
		t.Errorf("duplicate room accepted: %+v", resp)
	}
	// Store default comparison is case sensitive.
	if resp := m.CreateRoom("a"); !resp.OK() {
		t.Errorf("lowercase room rejected: %s", resp.Message)
	}
}

func TestUpdateRoomName(t *testing.T) {
	m := setupTestDB(t)
	m.CreateRoom("A")
	m.CreateRoom("B")

	roomA, err := m.findRoomByName("A")
	if err != nil || roomA == nil {
		t.Fatalf("find room: %v", err)
	}
	resp := m.UpdateRoomName(roomA.ID, "B")
	if resp.OK() || resp.Message != "Room name already exists" {
		t.Errorf("collision rename accepted: %+v", resp)
	}
	if resp := m.UpdateRoomName(roomA.ID, "A"); !resp.OK() {
		t.Errorf("rename to own name rejected: %s", resp.Message)
	}
	if resp := m.UpdateRoomName(roomA.ID, "C"); !resp.OK() {
		t.Errorf("rename failed: %s", resp.Message)
	}
	if resp := m.UpdateRoomName(99, "D"); resp.OK() || resp.Message != "Room not found" {
		t.Errorf("expected not-found failure, got %+v", resp)
	}
}

func roomWithTray(t *testing.T, m *Manager, numLights, width, height int) *models.Room {
	t.Helper()
	if resp := m.CreateRoom("GROW"); !resp.OK() {
		t.Fatalf("create room: %s", resp.Message)
	}
	room, err := m.findRoomByName("GROW")
	if err != nil || room == nil {
		t.Fatalf("find room: %v", err)
	}
	if resp := m.AddTrayToRoom(room.ID, "T1", numLights, width, height); !resp.OK() {
		t.Fatalf("add tray: %s", resp.Message)
	}
	full, err := m.GetRoomByID(room.ID)
	if err != nil || full == nil {
		t.Fatalf("reload room: %v", err)
	}
	return full
}

func TestAddTrayToRoomLayout(t *testing.T) {
	m := setupTestDB(t)
	room := roomWithTray(t, m, 4, 3, 2)

	if len(room.Trays) != 1 {
		t.Fatalf("expected 1 tray, got %d", len(room.Trays))
	}
	tray := room.Trays[0]
	if len(tray.Lights) != 4 {
		t.Fatalf("expected 4 lights, got %d", len(tray.Lights))
	}
	for i, light := range tray.Lights {
		if light.Width != 3 || light.Height != 2 {
			t.Errorf("light %d sized %dx%d, want 3x2", i, light.Width, light.Height)
		}
		if len(light.Pots) != 6 {
			t.Errorf("light %d has %d pots, want width*height=6", i, len(light.Pots))
		}
		for _, pot := range light.Pots {
			if pot.StrainID != nil {
				t.Errorf("new pot %d has a strain assigned", pot.ID)
			}
		}
	}

	resp := m.AddTrayToRoom(99, "T2", 1, 1, 1)
	if resp.OK() || resp.Message != "Room not found" {
		t.Errorf("expected not-found failure, got %+v", resp)
	}
}

func TestEditTrayCountChangePreservesLights(t *testing.T) {
	m := setupTestDB(t)
	room := roomWithTray(t, m, 3, 2, 2)
	tray := room.Trays[0]

	// Mark the original lights by planting strains in their first pots.
	m.CreateStrain("Northern Lights")
	strains, _ := m.ListStrains()
	sid := strains[0].ID
	originalIDs := make([]uint, 0, 3)
	for _, light := range tray.Lights {
		originalIDs = append(originalIDs, light.ID)
		if resp := m.AssignStrainToPot(light.Pots[0].ID, &sid); !resp.OK() {
			t.Fatalf("assign strain: %s", resp.Message)
		}
	}

	// Grow 3 -> 5: first three lights survive untouched, two appended.
	if resp := m.EditTray(tray.ID, "T1", 5, 2, 2); !resp.OK() {
		t.Fatalf("edit tray: %s", resp.Message)
	}
	got, _ := m.GetTrayByID(tray.ID)
	if got == nil || len(got.Lights) != 5 {
		t.Fatalf("expected 5 lights, got %+v", got)
	}
	for i := 0; i < 3; i++ {
		if got.Lights[i].ID != originalIDs[i] {
			t.Errorf("light %d replaced: id %d != %d", i, got.Lights[i].ID, originalIDs[i])
		}
		if got.Lights[i].Pots[0].StrainID == nil {
			t.Errorf("light %d lost its strain assignment", i)
		}
	}
	for i := 3; i < 5; i++ {
		l := got.Lights[i]
		if l.Width != 2 || l.Height != 2 {
			t.Errorf("appended light %d sized %dx%d, want template 2x2", i, l.Width, l.Height)
		}
		if len(l.Pots) != 4 {
			t.Errorf("appended light %d has %d pots, want 4", i, len(l.Pots))
		}
	}

	// Shrink 5 -> 3: the last two are trimmed, the first three survive.
	if resp := m.EditTray(tray.ID, "T1", 3, 2, 2); !resp.OK() {
		t.Fatalf("edit tray: %s", resp.Message)
	}
	got, _ = m.GetTrayByID(tray.ID)
	if len(got.Lights) != 3 {
		t.Fatalf("expected 3 lights after trim, got %d", len(got.Lights))
	}
	for i := 0; i < 3; i++ {
		if got.Lights[i].ID != originalIDs[i] {
			t.Errorf("light %d replaced after trim", i)
		}
	}
	var orphanPots int64
	m.db.Model(&models.Pot{}).Count(&orphanPots)
	if orphanPots != 12 { // 3 lights * 4 pots
		t.Errorf("expected 12 pots after trim, got %d", orphanPots)
	}
}

func TestEditTrayDimensionChangeReplacesTray(t *testing.T) {
	m := setupTestDB(t)
	room := roomWithTray(t, m, 2, 2, 2)
	tray := room.Trays[0]

	m.CreateStrain("Gelato")
	strains, _ := m.ListStrains()
	sid := strains[0].ID
	if resp := m.AssignStrainToPot(tray.Lights[0].Pots[0].ID, &sid); !resp.OK() {
		t.Fatalf("assign strain: %s", resp.Message)
	}
	planted := time.Now().AddDate(0, 0, -5)
	if resp := m.PlantTray(tray.ID, planted, nil); !resp.OK() {
		t.Fatalf("plant tray: %s", resp.Message)
	}

	// Changing light dimensions rebuilds the tray from scratch; planting and
	// pot assignments are discarded by contract.
	if resp := m.EditTray(tray.ID, "T1", 2, 3, 3); !resp.OK() {
		t.Fatalf("edit tray: %s", resp.Message)
	}

	if stale, _ := m.GetTrayByID(tray.ID); stale != nil {
		t.Fatalf("old tray survived a dimension change")
	}
	fresh, err := m.GetRoomByID(room.ID)
	if err != nil || len(fresh.Trays) != 1 {
		t.Fatalf("room should hold exactly the replacement tray: %v", err)
	}
	rebuilt := fresh.Trays[0]
	if rebuilt.IsPlanted() {
		t.Errorf("replacement tray kept the planting date")
	}
	if len(rebuilt.Lights) != 2 {
		t.Fatalf("expected 2 lights, got %d", len(rebuilt.Lights))
	}
	for _, light := range rebuilt.Lights {
		if light.Width != 3 || light.Height != 3 {
			t.Errorf("light sized %dx%d, want 3x3", light.Width, light.Height)
		}
		if len(light.Pots) != 9 {
			t.Errorf("light has %d pots, want 9", len(light.Pots))
		}
		for _, pot := range light.Pots {
			if pot.StrainID != nil {
				t.Errorf("replacement pot kept a strain assignment")
			}
		}
	}
}

func TestDeleteRoomCascades(t *testing.T) {
	m := setupTestDB(t)
	room := roomWithTray(t, m, 2, 2, 2)

	if resp := m.DeleteRoom(room.ID); !resp.OK() {
		t.Fatalf("delete room: %s", resp.Message)
	}
	var trays, lights, pots int64
	m.db.Model(&models.Tray{}).Count(&trays)
	m.db.Model(&models.Light{}).Count(&lights)
	m.db.Model(&models.Pot{}).Count(&pots)
	if trays != 0 || lights != 0 || pots != 0 {
		t.Fatalf("cascade left orphans: trays=%d lights=%d pots=%d", trays, lights, pots)
	}

	if resp := m.DeleteRoom(room.ID); resp.OK() || resp.Message != "Room not found" {
		t.Errorf("expected not-found failure, got %+v", resp)
	}
}

func TestPlantAndClearTray(t *testing.T) {
	m := setupTestDB(t)
	room := roomWithTray(t, m, 1, 1, 1)
	tray := room.Trays[0]

	planted := time.Now().AddDate(0, 0, -2)
	harvest := time.Now().AddDate(0, 0, 12)
	if resp := m.PlantTray(tray.ID, planted, &harvest); !resp.OK() {
		t.Fatalf("plant: %s", resp.Message)
	}
	got, _ := m.GetTrayByID(tray.ID)
	if !got.IsPlanted() || got.HarvestDate == nil {
		t.Fatalf("tray not planted: %+v", got)
	}

	if resp := m.ClearTray(tray.ID); !resp.OK() {
		t.Fatalf("clear: %s", resp.Message)
	}
	got, _ = m.GetTrayByID(tray.ID)
	if got.IsPlanted() || got.HarvestDate != nil {
		t.Fatalf("tray not cleared: %+v", got)
	}
}

func TestStrainUniqueAndPotAssignment(t *testing.T) {
	m := setupTestDB(t)
	if resp := m.CreateStrain("Haze"); !resp.OK() {
		t.Fatalf("create strain: %s", resp.Message)
	}
	if resp := m.CreateStrain("Haze"); resp.OK() || resp.Message != "Strain already exists" {
		t.Errorf("duplicate strain accepted: %+v", resp)
	}

	room := roomWithTray(t, m, 1, 1, 1)
	pot := room.Trays[0].Lights[0].Pots[0]
	strains, _ := m.ListStrains()
	sid := strains[0].ID

	if resp := m.AssignStrainToPot(pot.ID, &sid); !resp.OK() {
		t.Fatalf("assign: %s", resp.Message)
	}
	reloaded, _ := m.GetTrayByID(room.Trays[0].ID)
	assigned := reloaded.Lights[0].Pots[0]
	if assigned.StrainID == nil || *assigned.StrainID != sid {
		t.Fatalf("strain not assigned")
	}
	if assigned.Strain == nil || assigned.Strain.Name != "Haze" {
		t.Fatalf("strain not eager-loaded with tray")
	}

	if resp := m.AssignStrainToPot(pot.ID, nil); !resp.OK() {
		t.Fatalf("clear pot: %s", resp.Message)
	}
	reloaded, _ = m.GetTrayByID(room.Trays[0].ID)
	if reloaded.Lights[0].Pots[0].StrainID != nil {
		t.Fatalf("pot not cleared")
	}

	if resp := m.AssignStrainToPot(999, &sid); resp.OK() || resp.Message != "Pot not found" {
		t.Errorf("expected pot-not-found failure, got %+v", resp)
	}
	missing := uint(999)
	if resp := m.AssignStrainToPot(pot.ID, &missing); resp.OK() || resp.Message != "Strain not found" {
		t.Errorf("expected strain-not-found failure, got %+v", resp)
	}
}

func TestHasUsersFlow(t *testing.T) {
	m := setupTestDB(t)
	has, err := m.HasUsers()
	if err != nil {
		t.Fatalf("has users: %v", err)
	}
	if has {
		t.Fatalf("fresh store reports users")
	}
	if _, err := m.CreateUser("Ada", "ada@example.com", "ada", "pw", models.RoleSuperadmin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	has, err = m.HasUsers()
	if err != nil || !has {
		t.Fatalf("store with one user reports none (err=%v)", err)
	}
}

func TestResetDatabase(t *testing.T) {
	m := setupTestDB(t)
	roomWithTray(t, m, 1, 2, 2)
	if err := m.ResetDatabase(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	rooms, err := m.ListRooms()
	if err != nil {
		t.Fatalf("list after reset: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("reset left %d rooms", len(rooms))
	}
}
