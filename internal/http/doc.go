// Package http exposes the reservation services over HTTP.
//
// The router exposes the following endpoints:
//   - GET /rooms: lists rooms as `roomDTO` values. When startDate, endDate,
//     startTime and endTime are all supplied, each room's availability is
//     computed against approved bookings for that slot.
//   - POST /rooms: adds a room. Body: {"name"}. Requires an admin session.
//   - POST /bookings: submits a booking using the `bookingRequest` payload from
//     booking_handler.go. Responds 201 with {"id","booking"}, 409 with the
//     conflict reason, or 422 with per-field errors.
//   - GET /bookings/pending and GET /bookings/approved?date=&room=: booking
//     listings ordered by start.
//   - GET /stats: {"pending","approved","total_rooms"}.
//   - POST /admin/login: Body {"username","password"}. Responds with
//     {"token","expires_at"}; the token is also set as the `session_token`
//     cookie and the `X-Session-Token` header. POST /admin/logout clears the cookie.
//   - GET /admin/bookings[?status=], POST /admin/bookings/{id}/approve,
//     POST /admin/bookings/{id}/reject, DELETE /admin/bookings/{id}: booking
//     administration. Requires `Authorization: Bearer <token>` or the cookie.
//   - POST /book, GET /pending, GET /approved, POST /rooms/add and
//     POST /admin/approve|reject|delete (booking id in a {"id"} body, or in
//     the path for approve and reject): aliases kept for the original web client.
//   - GET /ws: websocket feed of change notifications.
//   - GET /healthz: store liveness.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
