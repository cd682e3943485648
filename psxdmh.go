// Package psxdmh reconstructs the music and sound effects of PlayStation
// Doom and Final Doom as 16-bit PCM audio. The root package holds the types
// shared by every stage of the audio graph: the mono and stereo sample
// types, the Module interface that all generator and processor stages
// implement, and the engine error type.
//
// The engine is a pull-based streaming graph. A sink drives the root module
// by calling Next until IsRunning reports false; every module pulls from the
// source it owns. The packages adpcm, spu, dsp, stream and music provide the
// stages, wmd and lcd parse the game data files, and extract composes the
// stages into complete extraction pipelines.
package psxdmh

// Version of the psxdmh library and tool.
const Version = "3.0.0"
