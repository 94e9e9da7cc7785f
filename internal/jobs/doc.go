// Package jobs is the owned registry for mosaic conversion jobs.
//
// All job state flows through the Store's create/update/query operations;
// nothing else holds job records. The backing SQLite database is in-memory,
// so records last exactly as long as the process. Working directories are
// namespaced by job ID, never by input file name.
package jobs
