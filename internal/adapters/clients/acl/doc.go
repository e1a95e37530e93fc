// Package acl is the anti-corruption layer between the remote quote
// collection and the domain.
//
// The remote speaks in posts: {"id", "title", "body", "userId"}. The domain
// speaks in quotes. Everything that knows the remote's shape lives here:
//
//   - external DTOs are unexported and never leave the package
//   - [MapHTTPError] turns transport failures and error statuses into
//     domain.UnavailableError or domain.ValidationError
//   - [RemoteQuoteClient] implements ports.RemoteQuoteClient and
//     ports.HealthChecker
//
// Mapping rules for a remote item:
//
//	id         -> Quote.ID
//	title      -> Quote.Text (items with a blank title are dropped)
//	body       -> Quote.Category, first non-blank line, else "Uncategorized"
//	timestamp  -> Quote.Timestamp, else the fetch time in epoch millis
//
// Other remote fields such as userId are dropped.
package acl
