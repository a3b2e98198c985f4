package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Generador de Horarios CUOM API",
        "description": "Builds conflict-free weekly timetables for university groups and audits externally produced ones.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Scheduler",
            "description": "Timetable generation and validation"
        },
        {
            "name": "Timetables",
            "description": "Saved, versioned timetables"
        },
        {
            "name": "Catalog",
            "description": "Catalog snapshots"
        },
        {
            "name": "Ops",
            "description": "Health and metrics"
        }
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Build a weekly timetable for a catalog snapshot",
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/GenerateScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Run outcome, including INFEASIBLE and BUDGET_EXCEEDED",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Structural input error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/validate": {
            "post": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Audit an externally produced schedule",
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ValidateScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/runs/{id}": {
            "get": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Fetch a recent run",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Run ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown or expired run",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/runs/{id}/export": {
            "get": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Download a run",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Run ID"
                    },
                    {
                        "in": "query",
                        "name": "format",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "csv",
                            "xlsx",
                            "pdf"
                        ]
                    },
                    {
                        "in": "query",
                        "name": "title",
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/octet-stream"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered file",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown run or timetable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/cache": {
            "delete": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Drop every cached scheduling result",
                "responses": {
                    "204": {
                        "description": "Purged"
                    }
                }
            }
        },
        "/schedules/jobs": {
            "post": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Queue a scheduling run",
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/GenerateScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Queued",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Queue unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/jobs/{id}": {
            "get": {
                "tags": [
                    "Scheduler"
                ],
                "summary": "Status of a queued run",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Job ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/catalog/sample": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Demonstration catalog",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Save a solved run as a new draft version",
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SaveTimetableRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown run",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Run is not SOLVED",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Persistence disabled",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "List saved timetables",
                "parameters": [
                    {
                        "in": "query",
                        "name": "label",
                        "type": "string"
                    },
                    {
                        "in": "query",
                        "name": "status",
                        "type": "string",
                        "enum": [
                            "DRAFT",
                            "PUBLISHED",
                            "ARCHIVED"
                        ]
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer"
                    },
                    {
                        "in": "query",
                        "name": "page_size",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}": {
            "delete": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Delete a draft timetable",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "409": {
                        "description": "Not a draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/entries": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Entries of a saved timetable",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/publish": {
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Publish a draft, archiving the previously published version",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/export": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Download a saved timetable",
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    },
                    {
                        "in": "query",
                        "name": "format",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "csv",
                            "xlsx",
                            "pdf"
                        ]
                    },
                    {
                        "in": "query",
                        "name": "title",
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/octet-stream"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered file",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown run or timetable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Aggregated service metrics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "TimeSlot": {
            "type": "object",
            "properties": {
                "day": {
                    "type": "string",
                    "enum": [
                        "Lunes",
                        "Martes",
                        "Miércoles",
                        "Jueves",
                        "Viernes",
                        "Sábado"
                    ]
                },
                "start": {
                    "type": "string",
                    "example": "07:00"
                },
                "end": {
                    "type": "string",
                    "example": "07:00"
                }
            }
        },
        "Catalog": {
            "type": "object",
            "properties": {
                "degrees": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {
                                "type": "string"
                            },
                            "name": {
                                "type": "string"
                            }
                        }
                    }
                },
                "shifts": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {
                                "type": "string"
                            },
                            "name": {
                                "type": "string"
                            },
                            "start": {
                                "type": "string",
                                "example": "07:00"
                            },
                            "end": {
                                "type": "string",
                                "example": "07:00"
                            },
                            "days": {
                                "type": "array",
                                "items": {
                                    "type": "string",
                                    "enum": [
                                        "Lunes",
                                        "Martes",
                                        "Miércoles",
                                        "Jueves",
                                        "Viernes",
                                        "Sábado"
                                    ]
                                }
                            }
                        }
                    }
                },
                "teachers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {
                                "type": "string"
                            },
                            "name": {
                                "type": "string"
                            },
                            "availability": {
                                "type": "array",
                                "items": {
                                    "$ref": "#/definitions/TimeSlot"
                                }
                            },
                            "canTeach": {
                                "type": "array",
                                "items": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                },
                "subjects": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {
                                "type": "string"
                            },
                            "name": {
                                "type": "string"
                            },
                            "hoursPerWeek": {
                                "type": "integer"
                            },
                            "degreeId": {
                                "type": "string"
                            },
                            "semester": {
                                "type": "integer"
                            }
                        }
                    }
                },
                "groups": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {
                                "type": "string"
                            },
                            "name": {
                                "type": "string"
                            },
                            "shiftId": {
                                "type": "string"
                            },
                            "degreeId": {
                                "type": "string"
                            },
                            "subjects": {
                                "type": "array",
                                "items": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                }
            }
        },
        "ScheduleEntry": {
            "type": "object",
            "properties": {
                "subjectId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "groupId": {
                    "type": "string"
                },
                "day": {
                    "type": "string",
                    "enum": [
                        "Lunes",
                        "Martes",
                        "Miércoles",
                        "Jueves",
                        "Viernes",
                        "Sábado"
                    ]
                },
                "start": {
                    "type": "string",
                    "example": "07:00"
                },
                "end": {
                    "type": "string",
                    "example": "07:00"
                }
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "catalog": {
                    "$ref": "#/definitions/Catalog"
                },
                "nodeBudget": {
                    "type": "integer"
                },
                "timeBudgetMs": {
                    "type": "integer",
                    "maximum": 600000
                }
            }
        },
        "ValidateScheduleRequest": {
            "type": "object",
            "required": [
                "entries"
            ],
            "properties": {
                "catalog": {
                    "$ref": "#/definitions/Catalog"
                },
                "entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ScheduleEntry"
                    }
                }
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "required": [
                "runId",
                "label"
            ],
            "properties": {
                "runId": {
                    "type": "string"
                },
                "label": {
                    "type": "string",
                    "maxLength": 120
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
