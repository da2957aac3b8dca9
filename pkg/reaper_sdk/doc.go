// Package reaper_sdk bootstraps a REAPER command channel from environment
// variables. REAPER_RUNTIME_MODE selects "http", "mock" or "auto" (the
// default): auto talks to the web interface at REAPER_URL when it is set and
// falls back to an in-memory host otherwise, so code written against the SDK
// runs unchanged on a machine without REAPER.
//
// In mock mode REAPER_MOCK_BACKEND (memory, bolt, badger) and
// REAPER_MOCK_PATH choose where persisted values live, and REAPER_MOCK_SEED
// names a JSON file of records loaded into the host at startup.
package reaper_sdk
