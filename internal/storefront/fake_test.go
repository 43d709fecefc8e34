package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/example/essia-shop/internal/model"
	"github.com/shopspring/decimal"
)

// fakeAPI is an in-memory AuthAPI and CartAPI
type fakeAPI struct {
	mu sync.Mutex

	user       *model.PublicAccount
	accounts   map[string]model.PublicAccount
	whoamiGate chan struct{}

	lines  []model.CartLine
	nextID int64

	whoamiCalls int
	listCalls   int
	removeCalls int
	orders      []CheckoutForm

	removeErr map[int64]error
	listErr   error
	orderErr  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		accounts:  map[string]model.PublicAccount{},
		removeErr: map[int64]error{},
	}
}

var errUnauthorized = &APIError{Status: 401, Message: "No token"}

func (f *fakeAPI) Whoami(ctx context.Context) (*model.PublicAccount, error) {
	f.mu.Lock()
	gate := f.whoamiGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.whoamiCalls++
	if f.user == nil {
		return nil, errUnauthorized
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*model.PublicAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[email]
	if !ok || password != "pw" {
		return nil, &APIError{Status: 401, Message: "Invalid credentials"}
	}
	f.user = &acct
	return &acct, nil
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) (*model.PublicAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return nil, &APIError{Status: 409, Message: "User already exists."}
	}
	acct := model.PublicAccount{ID: int64(len(f.accounts) + 1), Name: name, Email: email}
	f.accounts[email] = acct
	f.user = &acct
	return &acct, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	return nil
}

func (f *fakeAPI) ListCart(ctx context.Context) ([]model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.CartLine{}, f.lines...), nil
}

func (f *fakeAPI) AddToCart(ctx context.Context, item AddCartItem) (*model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qty := item.Quantity
	if qty == 0 {
		qty = 1
	}
	for i := range f.lines {
		if f.lines[i].DocumentID == item.DocumentID {
			f.lines[i].Quantity += qty
			f.lines[i].RecomputeTotal()
			l := f.lines[i]
			return &l, nil
		}
	}
	f.nextID++
	line := model.CartLine{
		ID:           f.nextID,
		DocumentID:   item.DocumentID,
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		ProductPrice: item.ProductPrice,
		Quantity:     qty,
	}
	line.RecomputeTotal()
	f.lines = append(f.lines, line)
	return &line, nil
}

func (f *fakeAPI) UpdateCartItem(ctx context.Context, lineID int64, quantity int) (*model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines[i].Quantity = quantity
			f.lines[i].RecomputeTotal()
			l := f.lines[i]
			return &l, nil
		}
	}
	return nil, &APIError{Status: 404, Message: "Cart item not found"}
}

func (f *fakeAPI) RemoveCartItem(ctx context.Context, lineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if err := f.removeErr[lineID]; err != nil {
		return err
	}
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: 404, Message: "Cart item not found"}
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, form CheckoutForm) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if len(f.lines) == 0 {
		return nil, &APIError{Status: 400, Message: "Your cart is empty"}
	}
	f.orders = append(f.orders, form)
	return &model.Order{ID: "order-1", Status: model.OrderStatusPending, Total: TotalLines(f.lines)}, nil
}

func (f *fakeAPI) signIn(acct model.PublicAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[acct.Email] = acct
	f.user = &acct
}

func (f *fakeAPI) seed(lines ...model.CartLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range lines {
		if l.ID > f.nextID {
			f.nextID = l.ID
		}
		l.RecomputeTotal()
		f.lines = append(f.lines, l)
	}
}

// staticIdentity is an Identity with a fixed user
type staticIdentity struct {
	user *model.PublicAccount
}

func (s staticIdentity) User() *model.PublicAccount { return s.user }

func line(id int64, docID string, price string, qty int) model.CartLine {
	return model.CartLine{
		ID:           id,
		DocumentID:   docID,
		ProductID:    id * 10,
		ProductName:  "Product " + docID,
		ProductPrice: decimal.RequireFromString(price),
		Quantity:     qty,
	}
}

var errBoom = errors.New("boom")
