package psxdmh

// Module is a node in the audio graph. Modules either generate audio or
// process the output of a source module they own. The S type parameter is
// the sample type, Mono or Stereo.
type Module[S Sample[S]] interface {
	// Next produces the next sample. The return value reports whether the
	// module was running. Once a module stops running, Next must set s to
	// the zero sample and return false on every call.
	Next(s *S) bool

	// IsRunning tests whether the module may still produce non-zero output.
	IsRunning() bool
}
