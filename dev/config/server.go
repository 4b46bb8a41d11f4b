package config

// SERVER_YML is the server config used with --dev. An empty privateKeyPem
// makes the server generate a throw-away RSA key on start.
const SERVER_YML = `
tapcard:
  privateKeyPem: ""
  publicUrl: "http://localhost:3000"
  qrSize: 256
  cron:
    timeZone: "America/Toronto"
  listener:
    port: 3000

sqlite:
  passPhrase: passphrase

google:
  storage:
    bucket: "tapcard"
    prefix: "tapcard-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: false
  applicationCredentials:

twilio:
  accountSid:
  authToken:
  messagingServiceSid:
`
