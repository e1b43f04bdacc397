package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	email := "Mixed-" + uuid.NewString() + "@Example.com"
	u := &types.User{Email: email, Password: "hash", FirstName: "Grace", LastName: "Hopper"}
	if _, err := repo.Create(dbc, []*types.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("Create: id not assigned")
	}
	if got, err := repo.GetByEmail(dbc, "  "+email+" "); err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: got=%v err=%v", got, err)
	}
	if ok, err := repo.EmailExists(dbc, email); err != nil || !ok {
		t.Fatalf("EmailExists: ok=%v err=%v", ok, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", got, err)
	}
	if got, _ := repo.GetByID(dbc, u.ID); got.FullName() != "Grace Hopper" {
		t.Fatalf("FullName: %q", got.FullName())
	}
}
