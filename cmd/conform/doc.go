// Package main provides the conform CLI.
//
//	conform run --service user --testcases user_cases.json --expected user_expected.json
//	conform gateway --config config.json --testcases-dir fixtures/
//	conform workload --config config.json workload.txt
//	conform stub --config config.json
//	conform history --limit 10
//
// `run` drives one service's suite under the expectation policy. `gateway`
// replays the user and product suites through the gateway under the routing
// policy. `workload` executes a plain-text workload script. `stub` starts
// local renditions of the services for dry runs. `history` lists recorded
// runs.
package main
