// Package forms implements FieldSet: a form over one model type that
// resolves which attributes to show, binds submitted data, validates it and
// syncs the result back onto the model instance.
//
// A FieldSet is typically built once per model type, configured, and then
// bound per request:
//
//	orders, _ := forms.New(model.MustClassOf(Order{}), forms.WithSession(store))
//	_ = orders.Configure(forms.Exclude(orders.Field("note")))
//
//	fs, err := orders.Bind(forms.BindModel(order), forms.BindData(r.PostForm))
//	if ok, err := fs.Validate(); err == nil && ok {
//		err = fs.Sync()
//	}
//	html, err := fs.Render()
//
// Bind returns an independent snapshot, so the configured FieldSet can be
// shared between requests. Configure, Rebind and the lifecycle methods
// mutate the receiver and must not be called concurrently.
package forms
