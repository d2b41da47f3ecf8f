// Package trace models receiver-function traces and the per-station streams
// they are stacked from.
//
// A [Trace] carries uniformly sampled amplitudes plus the ray metadata
// (slowness, inclination, P onset) produced upstream by a travel-time
// calculator. A [Stream] groups traces and offers channel selection,
// channel consistency checks and ZNE/ZRT component ordering:
//
//	rfs := stream.Select("HHR")
//	if _, err := rfs.CheckChannel(); err != nil {
//		return err
//	}
package trace
