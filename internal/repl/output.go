package repl

import (
	"fmt"

	"remindkit/internal/reminder"
)

func (r *REPL) displayList() {
	r.status.Hide()
	snap := r.store.Snapshot()

	fmt.Println()
	fmt.Println(r.formatter.FormatReminders(snap.Reminders))
	fmt.Println()
}

func (r *REPL) displayAccess(state reminder.AccessState) {
	r.status.Hide()
	fmt.Println(r.formatter.FormatAccess(state))
	fmt.Println()
}

func (r *REPL) displayError(err error) {
	r.status.Hide()
	fmt.Println(r.formatter.FormatError(err))
	fmt.Println()
}

func (r *REPL) displayWelcome() {
	fmt.Println(r.formatter.FormatInfo("remindkit — your reminders, in the terminal"))
	fmt.Println(r.formatter.FormatSystem("Type 'help' for commands."))
	fmt.Println()
}

func (r *REPL) displayHelp() {
	fmt.Println(r.formatter.FormatSystem(`Commands:
  list              Show incomplete reminders
  all               Show every reminder, completed included
  add <title> [| due 2006-01-02 15:04] [| prio high] [| notes <text>]
                    Create a reminder
  done <id|pos>     Toggle completion
  rm <id|pos>       Delete a reminder
  access            Show the current access state
  grant             Request access to the reminders store
  help              Show this help
  quit              Exit`))
	fmt.Println()
}
