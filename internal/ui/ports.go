// Package ui drives a Presenter from user input: it reads the form fields,
// runs the banking action and pushes the refreshed, formatted view.
package ui

// Form field names read through InputReader.
const (
	FieldLoginUser      = "login_user"
	FieldLoginPin       = "login_pin"
	FieldTransferTo     = "transfer_to"
	FieldTransferAmount = "transfer_amount"
	FieldLoanAmount     = "loan_amount"
	FieldCloseUser      = "close_user"
	FieldClosePin       = "close_pin"
)

// Row is a movement ready for display.
type Row struct {
	Seq   int
	Kind  string
	Date  string // empty when the account does not track dates
	Value string
}

// Ports for the presentation adapter.
type (
	Presenter interface {
		Render(rows []Row)
		SetBalance(text string)
		SetSummary(in, out, interest string)
		// SetWelcome receives the first name; empty means logged out.
		SetWelcome(firstName string)
		SetLoggedIn(loggedIn bool)
		SetDate(text string)
	}

	InputReader interface {
		Field(name string) string
		ClearAll()
	}
)
