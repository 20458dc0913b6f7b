// Scenario table for the generator loop
// Each scenario is one simulated operation; the default table covers every naming case
package synth

import (
	"github.com/andrewh/txname/pkg/naming"
)

// Scenario classes describe how a backend's transaction name relates to the span name.
const (
	// ClassDerived scenarios have a transaction name equal to the span name.
	ClassDerived = "derived"
	// ClassOverride scenarios carry a span name override, so the transaction name differs.
	ClassOverride = "override"
	// ClassUnknown scenarios lack the fields a backend needs to derive a transaction name.
	ClassUnknown = "unknown"
)

// Scenario is one entry of the generator loop.
type Scenario struct {
	Name      string
	Class     string
	Operation naming.Operation
}

var some = naming.Some

// DefaultScenarios returns the built-in scenario table, in emission order.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:      "web GET /Users",
			Class:     ClassDerived,
			Operation: naming.WebRequest{Method: some("GET"), Route: some("/Users")},
		},
		{
			Name:      "web POST /Users",
			Class:     ClassDerived,
			Operation: naming.WebRequest{Method: some("POST"), Route: some("/Users")},
		},
		{
			Name:      "messaging process template",
			Class:     ClassDerived,
			Operation: naming.MessagingOperation{Operation: some("process"), DestinationTemplate: some("/customers/{customerId}")},
		},
		{
			Name:      "messaging process topic",
			Class:     ClassDerived,
			Operation: naming.MessagingOperation{Operation: some("process"), DestinationName: some("MyTopic")},
		},
		{
			Name:      "web GET /Users with override",
			Class:     ClassOverride,
			Operation: naming.WebRequest{Method: some("GET"), Route: some("/Users"), NameOverride: some("Custom span name")},
		},
		{
			Name:      "web GET without route with override",
			Class:     ClassOverride,
			Operation: naming.WebRequest{Method: some("GET"), NameOverride: some("Custom span name")},
		},
		{
			Name:      "messaging process topic with override",
			Class:     ClassOverride,
			Operation: naming.MessagingOperation{Operation: some("process"), DestinationName: some("MyTopic"), NameOverride: some("Custom span name")},
		},
		{
			Name:      "web override Foo",
			Class:     ClassUnknown,
			Operation: naming.WebRequest{NameOverride: some("Foo")},
		},
		{
			Name:      "web override Bar",
			Class:     ClassUnknown,
			Operation: naming.WebRequest{NameOverride: some("Bar")},
		},
		{
			Name:      "web all absent",
			Class:     ClassUnknown,
			Operation: naming.WebRequest{},
		},
		{
			Name:      "messaging template without operation",
			Class:     ClassUnknown,
			Operation: naming.MessagingOperation{DestinationTemplate: some("/customers/{customerId}")},
		},
	}
}
