// Package permission models the account roles and permission tags that gate
// access to dashboards and API operations.
//
// # Roles
//
// [Role] is a closed set (NONE, ADMIN, STAFF, USER). Behaviour that depends on
// the role dispatches through [RoleVisitor], whose method set covers every
// role, instead of a string-keyed lookup table with a silent default.
//
// # Permissions
//
// The API issues one free-form permission tag per session. [ParseSet] turns it
// into a [Set] for any-of membership checks. [RoleManager] supplies the tag a
// role falls back to when the API omits one.
//
// # What this package must NOT do
//
//   - Access storage or the network.
//   - Import storefront, session, or route.
package permission
