package postgres

import (
	"errors"
	"testing"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
)

func TestCustomerRepository_PostgresCreateAndFind(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)

	created, err := repo.Create(domain.Customer{Name: "John Doe", Email: "john@example.com"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected assigned identity, got %+v", created)
	}

	byID, err := repo.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Email != "john@example.com" {
		t.Fatalf("unexpected customer payload: %+v", byID)
	}

	byEmail, err := repo.FindByEmail("JOHN@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("email lookup returned wrong customer: %+v", byEmail)
	}
}

func TestCustomerRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)

	if _, err := repo.FindByID("missing"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := repo.FindByEmail("nobody@example.com"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	if _, err := repo.Create(domain.Customer{Name: "John Doe", Email: "john@example.com"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	// Email уникален без учёта регистра.
	if _, err := repo.Create(domain.Customer{Name: "Jane Doe", Email: "John@Example.com"}); !errors.Is(err, domain.ErrCustomerEmailTaken) {
		t.Fatalf("expected ErrCustomerEmailTaken, got %v", err)
	}
}
