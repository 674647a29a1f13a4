// Package command provides the fortune session commands, their aliases and
// the input line parser.
package command

// Handler identifiers dispatched by the session loop.
const (
	HandlerRegister = "register"
	HandlerLogin    = "login"
	HandlerLogout   = "logout"
	HandlerLuck     = "luck"
	HandlerBind     = "bind"
	HandlerUnbind   = "unbind"
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
)

// Command is a session command.
type Command struct {
	// Name is the canonical command name.
	Name    string
	Aliases []string
	// Usage shows the argument form, e.g. "bind <code>".
	Usage string
	Help  string
	// MinArgs is the number of arguments the command requires.
	MinArgs int
	// RequiresLogin restricts the command to authenticated sessions.
	RequiresLogin bool
	Handler       string
}

// BuiltinCommands returns every session command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "register", Aliases: []string{"reg", "signup"}, Usage: "register <name>", Help: "Create an account", MinArgs: 1, Handler: HandlerRegister},
		{Name: "login", Aliases: []string{"li"}, Usage: "login <name>", Help: "Log in to your account", MinArgs: 1, Handler: HandlerLogin},
		{Name: "logout", Usage: "logout", Help: "Log out and stay connected", RequiresLogin: true, Handler: HandlerLogout},
		{Name: "luck", Aliases: []string{"fortune", "today", "l"}, Usage: "luck", Help: "Show today's luck", RequiresLogin: true, Handler: HandlerLuck},
		{Name: "bind", Usage: "bind <code>", Help: "Bind a XXXX-XXXX-XXXX-XXXX code to your luck", MinArgs: 1, RequiresLogin: true, Handler: HandlerBind},
		{Name: "unbind", Usage: "unbind", Help: "Remove your bound code", RequiresLogin: true, Handler: HandlerUnbind},
		{Name: "help", Aliases: []string{"?", "h"}, Usage: "help", Help: "List commands", Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Disconnect", Handler: HandlerQuit},
	}
}
