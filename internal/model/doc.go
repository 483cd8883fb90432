// Package model defines the core data structures shared across
// the fits-downloader application.
//
// # Frame
//
// Frame represents one plate-frame row from the catalog, with the columns
// the downloader needs promoted to typed fields:
//
//	frame := model.Frame{Name: "S052-0042", FITSLink: url}
//	fmt.Println(frame.FITSPath("/data/fits")) // Where the image will be saved
//
// # Frames
//
// Frames is the result-set type returned by every catalog lookup. An empty
// set is the normal "not found" outcome, never an error:
//
//	frames, err := repo.FrameByName("S052-0042")
//	if err != nil { ... }        // storage failure
//	if frames.Empty() { ... }    // no such frame
//
// # Plate
//
// Plate represents one row of the plate table; plates group frames via
// the PLATE_NAME column on frame rows.
package model
