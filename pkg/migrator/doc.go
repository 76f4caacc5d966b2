// Package migrator manages migrations on disk.
//
// Every migration lives in its own directory under a migrations root:
//
//	config/database/migrations/
//	    20240102150405-create_users/
//	        up.sql
//	        down.sql
//	    20240103090000-add_email_to_users/
//	        up.sql
//	        down.sql
//
// The directory name is the creation timestamp (YYYYMMDDHHMMSS, local time)
// and the migration name joined by "-". Ordering is by directory name, which
// makes it chronological.
//
// A Store creates, lists and finds migrations beneath a root:
//
//	store := migrator.NewStore(root)
//
//	mig, err := store.CreateWith("create_users", up, down)
//	...
//
//	all, err := store.List()
//	...
//
//	mig, err = store.Find("create_users")
//	if errors.Is(err, migrator.ErrAmbiguousMatch) {
//		// several directories share the name
//	}
//
// Names are not unique, so Find delegates to a Chooser when more than one
// directory matches. NonInteractive refuses to choose, while PromptChooser asks
// on a terminal.
//
// Generate produces the SQL for a new migration from its name and optional
// "name:type[:constraints]" column specs.
package migrator
