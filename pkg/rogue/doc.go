// Package rogue finds migrations written outside the canonical migrations root
// and converts them into the canonical layout.
//
// Tools and people often drop SQL into ./migrations, ./db/migrate or the
// project root instead of config/database/migrations. A Detector scans those
// places:
//
//	detector := rogue.NewDetector(projectDir, rogue.WithCanonicalRoot(cfg.Migrations.Dir))
//	detected, err := detector.Detect()
//
// and a Converter creates a proper <timestamp>-<name> directory for each one,
// using the file as up.sql and a synthesized down.sql (see format.Down):
//
//	converter := &rogue.Converter{Store: store}
//	for _, res := range converter.Convert(detected, false) {
//		if !res.Success() {
//			log.Println(res.Err)
//		}
//	}
package rogue
