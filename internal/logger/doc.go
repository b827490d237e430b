// Package logger wraps zap for the command-line tools:
//   - a global sugared logger writing progress to stdout and failures to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, so every line a
// workflow prints carries the name of the tool that produced it.
package logger
