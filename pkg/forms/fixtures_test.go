package forms_test

import (
	"testing"

	"github.com/goliatone/go-fieldset/pkg/forms"
	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/store/memory"
	"github.com/goliatone/go-fieldset/pkg/testsupport"
)

const basicSchemas = `
schemas:
  - name: One
    attributes:
      - {name: id, type: integer, primary_key: true}
  - name: Two
    attributes:
      - {name: id, type: integer, primary_key: true}
      - {name: foo, type: string, default: "133"}
  - name: Three
    attributes:
      - {name: id, type: integer, primary_key: true}
      - {name: foo, type: string}
      - {name: bar, type: string}
`

type User struct {
	ID       int      `fieldset:"id,pk"`
	Email    string   `fieldset:"email,required,maxlength=40"`
	Password string   `fieldset:"password,required,maxlength=20"`
	Name     *string  `fieldset:"name,maxlength=30"`
	Orders   []*Order `fieldset:"orders,relation=Order,many"`
}

func (u *User) String() string {
	if u.Name != nil {
		return *u.Name
	}
	return u.Email
}

type Order struct {
	ID       int   `fieldset:"id,pk"`
	UserID   int   `fieldset:"user_id,required,fk=User"`
	User     *User `fieldset:"user,relation=User,column=user_id"`
	Quantity int   `fieldset:"quantity,required"`
}

func (o *Order) String() string {
	return "Quantity: " + model.FormatKey(o.Quantity)
}

type Item struct {
	ID       int     `fieldset:"id,pk"`
	Quantity int     `fieldset:"quantity,required"`
	Note     *string `fieldset:"note,type=text"`
}

func class(t *testing.T, name string) *model.RecordClass {
	t.Helper()
	return testsupport.MustRecordClass(t, basicSchemas, name)
}

func mustFieldSet(t *testing.T, m model.Model, opts ...forms.Option) *forms.FieldSet {
	t.Helper()
	fs, err := forms.New(m, opts...)
	if err != nil {
		t.Fatalf("new fieldset: %v", err)
	}
	return fs
}

func mustRender(t *testing.T, fs *forms.FieldSet) string {
	t.Helper()
	out, err := fs.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func renderKeys(fs *forms.FieldSet) []string {
	var out []string
	for _, f := range fs.RenderFields() {
		out = append(out, f.Key())
	}
	return out
}

func ptr(s string) *string { return &s }

// userFixture stores bill and three orders in a fresh memory store. Only
// the first order belongs to bill.Orders.
type userFixture struct {
	store  *memory.Store
	bill   *User
	inst   *model.StructInstance
	orders []*Order
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()

	store := memory.New()
	bill := &User{Email: "bill@example.com", Password: "1234", Name: ptr("Bill")}
	inst := model.MustWrap(bill)
	store.MustSave(inst)

	orders := []*Order{
		{UserID: bill.ID, User: bill, Quantity: 10},
		{UserID: bill.ID, User: bill, Quantity: 5},
		{UserID: bill.ID, User: bill, Quantity: 1},
	}
	for _, order := range orders {
		store.MustSave(model.MustWrap(order))
	}
	bill.Orders = []*Order{orders[0]}

	return userFixture{store: store, bill: bill, inst: inst, orders: orders}
}
