// Package project ties a project directory to its configuration, migrations
// root and database.
//
// A roadwork project follows this layout:
//
//	project-root/
//	├── roadwork.yaml              # dev configuration
//	├── roadwork.<env>.yaml        # other environments (ENVIRONMENT=<env>)
//	└── config/
//	    └── database/
//	        └── migrations/
//	            └── 20240102150405-create_users/
//	                ├── up.sql
//	                └── down.sql
//
// Initialize creates the configuration file and the migrations root without
// touching anything that already exists. The Store, Detector and Connect
// helpers build the migrator, rogue and database values for the project.
package project
