package services

// Services defined in this package:
// - AuthService: staff authentication
// - IdentityService: resolves applicants to canonical person records
// - FeeService: application fee calculation
// - AdmissionService: application intake and lifecycle transitions
// - InvoiceService: application fee invoicing
// - PaymentService: payment transactions and reconciliation
// - EnrollmentService: converts admitted applications into students
// - CatalogService: read access to cycles and the academic catalog
