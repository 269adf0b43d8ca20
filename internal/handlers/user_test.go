package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

func TestUserUpdateDocumentPreservesPasswordWhenEmpty(t *testing.T) {
	req := updateUserRequest{
		Username:       "user1",
		Name:           "사용자",
		CompanyName:    "고객사",
		BusinessNumber: "123-45-67890",
		Phone:          "010-1234-5678",
		Address:        "서울특별시",
		Status:         models.UserStatusAllowed,
		Role:           models.RoleUser,
	}

	set, err := userUpdateDocument(req)
	if err != nil {
		t.Fatalf("userUpdateDocument returned error: %v", err)
	}
	if _, ok := set["password"]; ok {
		t.Fatal("empty password must leave the stored hash untouched")
	}
}

func TestUserUpdateDocumentRehashesNewPassword(t *testing.T) {
	req := updateUserRequest{
		Username:       "user1",
		Password:       "new-secret",
		Name:           "사용자",
		CompanyName:    "고객사",
		BusinessNumber: "123-45-67890",
		Phone:          "010-1234-5678",
		Address:        "서울특별시",
		Status:         models.UserStatusAllowed,
		Role:           models.RoleUser,
	}

	set, err := userUpdateDocument(req)
	if err != nil {
		t.Fatalf("userUpdateDocument returned error: %v", err)
	}

	hash, ok := set["password"].(string)
	if !ok || hash == "" {
		t.Fatal("expected a password hash in the update document")
	}
	if hash == "new-secret" {
		t.Fatal("password must never be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-secret")); err != nil {
		t.Fatalf("stored hash does not match the new password: %v", err)
	}
}

func TestDemotesAdmin(t *testing.T) {
	admin := models.User{Role: models.RoleAdmin, Status: models.UserStatusAllowed}
	regular := models.User{Role: models.RoleUser, Status: models.UserStatusAllowed}

	tests := []struct {
		name      string
		target    models.User
		newRole   string
		newStatus string
		want      bool
	}{
		{"admin demoted to user", admin, models.RoleUser, models.UserStatusAllowed, true},
		{"admin blocked", admin, models.RoleAdmin, models.UserStatusBlocked, true},
		{"admin demoted and blocked", admin, models.RoleUser, models.UserStatusBlocked, true},
		{"admin kept as is", admin, models.RoleAdmin, models.UserStatusAllowed, false},
		{"regular user edit never counts", regular, models.RoleUser, models.UserStatusBlocked, false},
		{"regular user promoted", regular, models.RoleAdmin, models.UserStatusAllowed, false},
	}

	for _, tt := range tests {
		if got := demotesAdmin(tt.target, tt.newRole, tt.newStatus); got != tt.want {
			t.Fatalf("%s: demotesAdmin = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeUserRoleAndStatusDefaults(t *testing.T) {
	if got := normalizeUserRole("superuser"); got != models.RoleUser {
		t.Fatalf("unknown role must default to user, got %q", got)
	}
	if got := normalizeUserRole(models.RoleAdmin); got != models.RoleAdmin {
		t.Fatalf("admin role must be kept, got %q", got)
	}
	if got := normalizeUserStatus(""); got != models.UserStatusAllowed {
		t.Fatalf("empty status must default to allowed, got %q", got)
	}
	if got := normalizeUserStatus(models.UserStatusBlocked); got != models.UserStatusBlocked {
		t.Fatalf("blocked status must be kept, got %q", got)
	}
}

func TestNormalizeProductIDsDropsBlanks(t *testing.T) {
	ids := normalizeProductIDs([]string{" p1 ", "", "p2", "  "})
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("unexpected normalized ids: %v", ids)
	}
}

func TestUserJSONNeverExposesPassword(t *testing.T) {
	user := models.User{Username: "user1", Password: "$2a$10$hash"}

	body, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	if strings.Contains(string(body), "hash") || strings.Contains(string(body), "password") {
		t.Fatalf("password leaked into json: %s", body)
	}
}
