package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/catalog"
	"github.com/safar/stonecart/internal/testutil"
	"go.uber.org/zap"
)

func TestIntegrationAddItemMerges(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	manager := NewManager(db, catalog.NewReader(db, zap.NewNop()), zap.NewNop())
	user := testutil.CreateUser(t, db)
	product := testutil.CreateProduct(t, db, "Nero Marquina", "129.99")

	cart, err := manager.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 2, Color: "black", Size: "24x24"})
	if err != nil {
		t.Fatalf("First add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("Expected 1 line with quantity 2, got %+v", cart.Items)
	}

	cart, err = manager.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 3, Color: "black", Size: "24x24"})
	if err != nil {
		t.Fatalf("Second add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("Expected 1 line with quantity 5, got %+v", cart.Items)
	}
	if cart.Subtotal.StringFixed(2) != "649.95" {
		t.Errorf("Expected subtotal 649.95, got %s", cart.Subtotal.StringFixed(2))
	}

	cart, err = manager.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 1, Color: "black", Size: "12x12"})
	if err != nil {
		t.Fatalf("Different size add: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Errorf("Expected a separate line for another size, got %d lines", len(cart.Items))
	}
}

func TestIntegrationConcurrentAddsProduceOneLine(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	manager := NewManager(db, catalog.NewReader(db, zap.NewNop()), zap.NewNop())
	user := testutil.CreateUser(t, db)
	product := testutil.CreateProduct(t, db, "Calacatta Gold", "210.00")

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 1, Color: "black", Size: "24x24"})
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent add failed: %v", err)
	}

	cart, err := manager.GetCart(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != workers {
		t.Errorf("Expected quantity %d, got %d", workers, cart.Items[0].Quantity)
	}

	var carts int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carts WHERE user_id = $1`, user.ID).Scan(&carts); err != nil {
		t.Fatalf("Count carts: %v", err)
	}
	if carts != 1 {
		t.Errorf("Expected exactly one cart, got %d", carts)
	}
}

func TestIntegrationForeignItemIsUntouched(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	manager := NewManager(db, catalog.NewReader(db, zap.NewNop()), zap.NewNop())
	owner := testutil.CreateUser(t, db)
	intruder := testutil.CreateUser(t, db)
	product := testutil.CreateProduct(t, db, "Emperador Dark", "99.00")

	ownerCart, err := manager.AddItem(ctx, owner.ID, AddItemRequest{ProductID: product.ID, Quantity: 4, Color: "black", Size: "12x12"})
	if err != nil {
		t.Fatalf("Add item: %v", err)
	}
	itemID := ownerCart.Items[0].ID

	intruderCart, err := manager.UpdateItem(ctx, intruder.ID, itemID, 1)
	if err != nil {
		t.Fatalf("Foreign update should be a silent no-op, got %v", err)
	}
	if len(intruderCart.Items) != 0 || intruderCart.UserID != intruder.ID {
		t.Errorf("Expected the intruder's own empty cart, got %+v", intruderCart)
	}

	if _, err := manager.RemoveItem(ctx, intruder.ID, itemID); err != nil {
		t.Fatalf("Foreign remove should be a silent no-op, got %v", err)
	}

	ownerCart, err = manager.GetCart(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Get owner cart: %v", err)
	}
	if len(ownerCart.Items) != 1 || ownerCart.Items[0].Quantity != 4 {
		t.Errorf("Owner cart changed: %+v", ownerCart.Items)
	}

	exists, err := manager.ItemExists(ctx, intruder.ID, itemID)
	if err != nil {
		t.Fatalf("Item exists: %v", err)
	}
	if exists {
		t.Error("Item must not be visible to another user")
	}
}

func TestIntegrationConcurrentFirstAccessCreatesOneCart(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	manager := NewManager(db, catalog.NewReader(db, zap.NewNop()), zap.NewNop())
	user := testutil.CreateUser(t, db)

	const workers = 8
	ids := make(chan uuid.UUID, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := manager.GetCart(ctx, user.ID)
			if err != nil {
				t.Errorf("Get cart: %v", err)
				return
			}
			ids <- cart.ID
		}()
	}

	wg.Wait()
	close(ids)

	seen := map[uuid.UUID]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("Expected all callers to share one cart, got %d", len(seen))
	}
}
