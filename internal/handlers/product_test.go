package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestCatalogFilterAdminSeesEverything(t *testing.T) {
	filter := catalogFilter(models.User{Role: models.RoleAdmin})
	if len(filter) != 0 {
		t.Fatalf("expected empty filter for admin, got %v", filter)
	}
}

func TestCatalogFilterUserScopedToEntitlements(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	user := models.User{
		Role:       models.RoleUser,
		ProductIDs: []string{p1.Hex(), "not-an-id", p2.Hex()},
	}

	filter := catalogFilter(user)
	idFilter, ok := filter["_id"].(bson.M)
	if !ok {
		t.Fatalf("expected _id filter, got %v", filter)
	}
	ids, ok := idFilter["$in"].([]primitive.ObjectID)
	if !ok {
		t.Fatalf("expected $in clause, got %v", idFilter)
	}
	if len(ids) != 2 || ids[0] != p1 || ids[1] != p2 {
		t.Fatalf("malformed entitlement ids must be skipped, got %v", ids)
	}
}

func TestCatalogFilterUserWithoutEntitlementsSeesNothing(t *testing.T) {
	filter := catalogFilter(models.User{Role: models.RoleUser})
	idFilter := filter["_id"].(bson.M)
	ids := idFilter["$in"].([]primitive.ObjectID)
	if len(ids) != 0 {
		t.Fatalf("expected empty entitlement set, got %v", ids)
	}
}

func TestProductUpdateDocumentIsPartial(t *testing.T) {
	name := "  New Name  "
	set := productUpdateDocument(updateProductRequest{Name: &name})

	if set["name"] != "New Name" {
		t.Fatalf("expected trimmed name, got %v", set["name"])
	}
	if _, ok := set["code"]; ok {
		t.Fatal("absent code must not be written")
	}
	if _, ok := set["registDate"]; ok {
		t.Fatal("absent registDate must not be written")
	}
	if _, ok := set["updatedAt"]; !ok {
		t.Fatal("updatedAt must always be refreshed")
	}
}
