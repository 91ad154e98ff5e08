// Package cli implements authctl, a command-line tool for gophauth.
//
// Offline commands:
//   - hash: read a password, check it against the policy and print its
//     bcrypt hash (for seeding accounts)
//   - check: report which policy rules a password fails
//
// Commands talking to a running server over gRPC:
//   - register, login, profile, passwd, ping
//
// Passwords are read from the terminal without echo, or line by line from
// stdin when it is not a terminal.
package cli
