// Package config loads the run configuration of a pipeline from an HCL file.
//
// Every field has a default, so a file only needs to name what it changes:
//
//	tolerance = 10
//	engine {
//	  mode   = "batch"
//	  ncores = 8
//	  batch {
//	    queue_limit = 50
//	  }
//	}
package config
