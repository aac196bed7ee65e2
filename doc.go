// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpkafka turns HTTP POST bodies into Kafka records.
//
// # Overview
//
// A Handler serves one Route. Each POST body is read, joined into one
// contiguous value and handed to the Kafka client without waiting for the
// broker. The caller gets the success payload as soon as the record is
// queued; whether the broker accepted it shows up later in a delivery
// report. Delivery is at most once.
//
// # Quick Start
//
//	brokers, err := httpkafka.NewBrokerList("localhost:9092")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	producer := &httpkafka.Producer{Brokers: brokers}
//	if err := producer.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer producer.Stop(context.Background())
//
//	http.Handle("/events", &httpkafka.Handler{
//	    Route:    &httpkafka.Route{Path: "/events", Topic: "device-events"},
//	    Producer: producer,
//	})
//
// # Responses
//
//   - Non-POST methods get 405 and the body is never read.
//   - An empty body gets the success payload and nothing is produced.
//   - A body that does not fit in memory (see Handler.MaxMemoryBody) or
//     exceeds Handler.MaxBodySize gets 413 with TooLargeBody.
//   - Everything else that reaches the client gets 200 with SuccessBody.
//
// # Topics
//
// A Route creates its Topic handle on first use and keeps it for later
// requests. Stopping the Producer closes the handles and clears the routes,
// so a restarted Producer creates new ones.
//
// # Delivery Reports
//
// Completed sends are queued and dispatched by Poll, which every handler
// calls after responding. Set Producer.PollInterval to also poll in the
// background. Failures are logged at error level to the route's Logger and
// passed to delivery listeners:
//
//	producer.AddDeliveryListener(func(r *httpkafka.DeliveryReport) {
//	    if r.Err != nil {
//	        deliveryErrors.WithLabelValues(r.Topic, r.ErrorType).Inc()
//	    }
//	})
//
// # Thread Safety
//
// Producer, Route and Handler are safe for concurrent use. Only one
// goroutine dispatches delivery reports at a time; Poll returns at once
// when another one is busy.
package httpkafka
