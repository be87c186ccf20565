// Package opencritic queries the OpenCritic API through its RapidAPI
// gateway for aggregated critic scores. The gateway requires a per-request
// credential; it is read from the process environment at call time so a
// key added mid-session is picked up without a restart. The search response
// shape has changed upstream before, so both known layouts are tolerated.
package opencritic
